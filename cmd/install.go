package cmd

import (
	"fmt"
	"os"
	"turnsync/internal/autostart"
	"turnsync/internal/config"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:       "install [watch|host]",
	Short:     "Register watch or host mode to start on boot",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(autostart.ModeWatch), string(autostart.ModeHost)},
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := modeArg(args)
		if err != nil {
			return err
		}

		execPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to get executable path: %w", err)
		}

		// The service starts from another working directory, and on
		// Linux possibly before the user's environment is set up.
		configPath, err := config.FilePath(cfgFile)
		if err != nil {
			return err
		}

		var extra []string
		if configPath != "" {
			extra = append(extra, "--config", configPath)
		}

		if err := autostart.New(mode).Install(execPath, extra...); err != nil {
			return err
		}

		fmt.Printf("turnsync %s registered for autostart\n", mode)
		return nil
	},
}

func modeArg(args []string) (autostart.Mode, error) {
	if len(args) == 0 {
		return autostart.ModeWatch, nil
	}
	return autostart.ParseMode(args[0])
}

func init() {
	rootCmd.AddCommand(installCmd)
}
