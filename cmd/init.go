package cmd

import (
	"github.com/spf13/cobra"

	"github.com/docketdive/docketdive/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize DocketDive configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure DocketDive and generates a .docketdive.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
