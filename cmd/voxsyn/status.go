package main

import (
	"fmt"

	"github.com/Nephrolytics-ai/voxsyn/pkg/llms"
	"github.com/Nephrolytics-ai/voxsyn/pkg/llms/openai"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the configured provider and check the connection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		opts := cfg.AudioOptions()
		fmt.Fprintf(out, "provider: %s\n", cfg.Provider)
		fmt.Fprintf(out, "model:    %s\n", valueOr(opts.Model, "(provider default)"))
		fmt.Fprintf(out, "endpoint: %s\n", valueOr(opts.URL, "(provider default)"))

		token, ok := credentialStore(cfg).Get()
		if !ok {
			fmt.Fprintln(out, "token:    not set")
			return nil
		}
		fmt.Fprintln(out, "token:    set")

		if cfg.Provider != llms.ProviderOpenAI {
			fmt.Fprintln(out, "connection: check not available for this provider")
			return nil
		}
		opts.AuthToken = token
		if err := openai.CheckConnection(cmd.Context(), opts); err != nil {
			fmt.Fprintf(out, "connection: failed (%v)\n", err)
			return err
		}
		fmt.Fprintln(out, "connection: ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func valueOr(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
