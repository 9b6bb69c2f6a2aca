package main

import (
	"fmt"
	"os"

	"github.com/cognify-labs/cognify/internal/cli"
	"github.com/cognify-labs/cognify/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cognifyd",
		Short: "Cognify daemon",
		Long:  "Cognify daemon for running the video knowledge API server",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
