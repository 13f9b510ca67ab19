package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-scorer/internal/config"
)

var hashKeyCost int

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key KEY",
	Short: "Print a bcrypt hash of an API key for APP_API_KEY_HASH",
	Args:  cobra.ExactArgs(1),
	RunE:  runHashKey,
}

func init() {
	hashKeyCmd.Flags().IntVar(&hashKeyCost, "cost", 12, "bcrypt cost (10-14)")
	rootCmd.AddCommand(hashKeyCmd)
}

func runHashKey(cmd *cobra.Command, args []string) error {
	hash, err := config.HashAPIKey(args[0], hashKeyCost)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
	return err
}
