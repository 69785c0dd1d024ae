package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var brand string

var rootCmd = &cobra.Command{
	Use:   "brandwatch",
	Short: "brandwatch collects and analyzes social media mentions of a brand",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("No subcommand given")
		cmd.Usage()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Exit with a nonzero exit code if the command fails with an error
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addBrandFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&brand, "brand", "b", "", "brand to process")
	cmd.MarkFlagRequired("brand")
}
