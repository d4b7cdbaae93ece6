package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Nephrolytics-ai/voxsyn/pkg/credentials"
	"github.com/Nephrolytics-ai/voxsyn/pkg/model"
	"github.com/Nephrolytics-ai/voxsyn/pkg/surface"
	"github.com/spf13/cobra"
)

var transcribeAppendTo string

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio file>",
	Short: "Transcribe an existing recording and print the corrected text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTranscribe(cmd.Context(), cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(transcribeCmd)

	transcribeCmd.Flags().StringVar(&transcribeAppendTo, "append-to", "", "also append the text to this notes file")
}

func runTranscribe(ctx context.Context, cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read audio file: %w", err)
	}
	contentType, err := model.ResolveAudioMIMEType(path)
	if err != nil {
		return err
	}

	rules, err := loadRules(cfg)
	if err != nil {
		return err
	}
	transcriber, err := newTranscriber(cfg, rules)
	if err != nil {
		return err
	}
	token, err := credentials.Obtain(ctx, credentialStore(cfg), credentials.TerminalPrompter{})
	if err != nil {
		return err
	}

	if cfg.TranscribeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.TranscribeTimeout)
		defer cancel()
	}

	payload := model.AudioPayload{Data: data, ContentType: contentType, FileName: filepath.Base(path)}
	raw, meta, err := transcriber.Transcribe(ctx, payload, token)
	if err != nil {
		return err
	}
	text := rules.Apply(raw)
	fmt.Fprintln(cmd.OutOrStdout(), text)
	fmt.Fprintf(cmd.ErrOrStderr(), "provider=%s model=%s latency_ms=%s\n",
		meta[model.MetadataKeyProvider], meta[model.MetadataKeyModel], meta[model.MetadataKeyLatencyMs])

	if transcribeAppendTo != "" {
		return surface.NewFile(transcribeAppendTo).AppendText(ctx, text)
	}
	return nil
}
