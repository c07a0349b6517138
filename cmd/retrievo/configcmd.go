package retrievo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/soundprediction/retrievo/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage retrievo configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file with default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			path = filepath.Join(home, ".retrievo.yaml")
		}

		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Println("Wrote config file:", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
}
