package main

import (
	"os"

	"github.com/Nephrolytics-ai/voxsyn/pkg/config"
	"github.com/Nephrolytics-ai/voxsyn/pkg/logging"
	"github.com/spf13/cobra"
)

var (
	configFile string
	envFile    string
	provider   string
	logLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "voxsyn",
	Short:         "Dictate into notes with speech-to-text and medical term correction",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		opts := make([]config.LoaderOption, 0, 2)
		if configFile != "" {
			opts = append(opts, config.WithConfigFile(configFile))
		}
		if envFile != "" {
			opts = append(opts, config.WithEnvFile(envFile))
		}

		loaded, err := config.Load(opts...)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("provider") {
			loaded.Provider = provider
			loaded.Normalize()
			if err := loaded.Validate(); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("log-level") {
			loaded.Log.Level = logLevel
		}
		if err := logging.Configure(loaded.Log.Level, loaded.Log.Format, os.Stderr); err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", ".env file (defaults to $SETTINGS_FILE or ./.env)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "transcription provider: openai, gemini or huggingface")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Error already printed by cobra
		os.Exit(1)
	}
}
