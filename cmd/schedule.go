package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Validate and print the hosting schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		games, err := cfg.Schedules()
		if err != nil {
			return err
		}

		if len(games) == 0 {
			fmt.Println("no games configured")
			return nil
		}

		fmt.Printf("%-20s", "GAME")
		for d := time.Monday; d <= time.Saturday; d++ {
			fmt.Printf(" %-4s", d.String()[:3])
		}
		fmt.Printf(" %-4s\n", time.Sunday.String()[:3])

		for _, g := range games {
			fmt.Printf("%-20s", g.Name)
			for d := time.Monday; d <= time.Saturday; d++ {
				fmt.Printf(" %02d  ", g.HourFor(d))
			}
			fmt.Printf(" %02d\n", g.HourFor(time.Sunday))
		}

		fmt.Println("hours are UTC")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
