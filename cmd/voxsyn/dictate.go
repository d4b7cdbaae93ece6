package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/voxsyn/pkg/capture"
	"github.com/Nephrolytics-ai/voxsyn/pkg/credentials"
	"github.com/Nephrolytics-ai/voxsyn/pkg/dictation"
	"github.com/Nephrolytics-ai/voxsyn/pkg/logging"
	"github.com/Nephrolytics-ai/voxsyn/pkg/surface"
	"github.com/spf13/cobra"
)

var (
	dictateTarget   string
	dictateFile     string
	dictateInput    string
	dictateRealtime bool
)

var dictateCmd = &cobra.Command{
	Use:   "dictate",
	Short: "Record from the microphone and append the corrected transcript to a target",
	Long: `Press Enter to start recording and Enter again to stop. Each recording is
transcribed, corrected and appended to the target. Type q and Enter to quit.

Targets:
  field      an in-memory field printed when the command exits (default)
  file       a notes file given by --file
  clipboard  the system clipboard`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runDictate(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(dictateCmd)

	dictateCmd.Flags().StringVar(&dictateTarget, "target", "field", "where dictated text goes: field, file or clipboard")
	dictateCmd.Flags().StringVar(&dictateFile, "file", "", "notes file for --target file")
	dictateCmd.Flags().StringVar(&dictateInput, "input", "", "replay a 16-bit WAV file instead of the microphone")
	dictateCmd.Flags().BoolVar(&dictateRealtime, "realtime", true, "pace --input at its recorded speed")
}

func newTarget() (surface.Surface, *surface.Field, error) {
	switch strings.ToLower(strings.TrimSpace(dictateTarget)) {
	case "", "field":
		field := surface.NewField(surface.KindValue, "")
		return field, field, nil
	case "file":
		if strings.TrimSpace(dictateFile) == "" {
			return nil, nil, errors.New("--file is required with --target file")
		}
		return surface.NewFile(dictateFile), nil, nil
	case "clipboard":
		return surface.NewClipboard(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown target %q", dictateTarget)
	}
}

func newDevice() capture.Device {
	if dictateInput != "" {
		return capture.NewWAVFileDevice(dictateInput, dictateRealtime)
	}
	return capture.NewPortAudioDevice()
}

func runDictate(ctx context.Context, in io.Reader, out io.Writer, errOut io.Writer) error {
	rules, err := loadRules(cfg)
	if err != nil {
		return err
	}
	transcriber, err := newTranscriber(cfg, rules)
	if err != nil {
		return err
	}
	target, field, err := newTarget()
	if err != nil {
		return err
	}

	store := credentialStore(cfg)
	prompter := credentials.TerminalPrompter{}
	// prompt before the key loop owns stdin
	if _, err := credentials.Obtain(ctx, store, prompter); err != nil {
		return err
	}

	session := dictation.NewSession(newDevice(), target, transcriber, store,
		dictation.WithRules(rules),
		dictation.WithCaptureConfig(cfg.CaptureConfig()),
		dictation.WithTranscribeTimeout(cfg.TranscribeTimeout),
	)
	controller := dictation.NewController(session, store, prompter)
	controller.OnResult(func(r dictation.Result) {
		fmt.Fprintf(out, "> %s\n", r.Text)
		if !r.Delivered {
			fmt.Fprintf(errOut, "not delivered: %v\n", r.WriteErr)
		}
	})
	controller.OnError(func(err error) {
		fmt.Fprintf(errOut, "transcription failed: %v\n", err)
	})

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Fprintln(out, "Press Enter to start recording, Enter again to stop. Type q to quit.")
	var last *dictation.Pending
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok || strings.EqualFold(strings.TrimSpace(line), "q") {
				break loop
			}
			pending, err := controller.OnActivate(ctx)
			if err != nil {
				fmt.Fprintf(errOut, "cannot start recording: %v\n", err)
				continue
			}
			switch {
			case pending != nil:
				last = pending
				fmt.Fprintln(out, "transcribing...")
			case session.State() == dictation.StateRecording:
				fmt.Fprintln(out, "recording... press Enter to stop")
			default:
				fmt.Fprintln(out, "still transcribing, please wait")
			}
		}
	}

	// stop always submits what was captured
	if pending := session.Stop(context.Background()); pending != nil {
		last = pending
	}
	if last != nil {
		waitCtx, cancel := finalWaitContext(cfg.TranscribeTimeout)
		defer cancel()
		if _, err := last.Wait(waitCtx); err != nil {
			logging.NewLogger(ctx).Debugf("final transcription: %v", err)
		}
	}

	if field != nil && field.Text() != "" {
		fmt.Fprintf(out, "\n%s\n", field.Text())
	}
	return nil
}

// finalWaitContext bounds the wait for the last transcription at exit.
// A zero timeout means the pipeline is unbounded, so the wait is too.
func finalWaitContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout+5*time.Second)
}
