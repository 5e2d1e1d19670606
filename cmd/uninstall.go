package cmd

import (
	"fmt"
	"turnsync/internal/autostart"

	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:       "uninstall [watch|host]",
	Short:     "Remove the autostart registration for watch or host mode",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(autostart.ModeWatch), string(autostart.ModeHost)},
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := modeArg(args)
		if err != nil {
			return err
		}

		if err := autostart.New(mode).Uninstall(); err != nil {
			return err
		}

		fmt.Printf("turnsync %s autostart removed\n", mode)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
