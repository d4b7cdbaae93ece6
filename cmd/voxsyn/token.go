package main

import (
	"fmt"

	"github.com/Nephrolytics-ai/voxsyn/pkg/credentials"
	"github.com/spf13/cobra"
)

var tokenValue string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the stored transcription API key",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store an API key, prompting for it unless --value is given",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := credentials.NewFileStore(cfg.TokenPath())
		token := tokenValue
		if token == "" {
			prompted, err := credentials.TerminalPrompter{}.Prompt(cmd.Context())
			if err != nil {
				return err
			}
			token = prompted
		}
		if err := store.Set(token); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "token stored in %s\n", store.Path())
		return nil
	},
}

var tokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := credentials.NewFileStore(cfg.TokenPath())
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "token removed from %s\n", store.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenSetCmd, tokenClearCmd)

	tokenSetCmd.Flags().StringVar(&tokenValue, "value", "", "API key to store (avoid: ends up in shell history)")
}
