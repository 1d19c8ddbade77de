package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aretw0/tinyfsm"
	"github.com/aretw0/tinyfsm/internal/presentation/tui"
	"github.com/aretw0/tinyfsm/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

// scheduledSignal is a --signal flag value: emit name once after has elapsed.
type scheduledSignal struct {
	name  string
	after time.Duration
}

func parseSchedules(values []string) ([]scheduledSignal, error) {
	out := make([]scheduledSignal, 0, len(values))
	for _, v := range values {
		name, delay, ok := strings.Cut(v, "@")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --signal %q: expected name@delay", v)
		}
		d, err := time.ParseDuration(delay)
		if err != nil {
			return nil, fmt.Errorf("invalid --signal %q: %w", v, err)
		}
		out = append(out, scheduledSignal{name: name, after: d})
	}
	return out, nil
}

func colorProfile(w io.Writer) termenv.Profile {
	if f, ok := w.(*os.File); ok {
		return tui.ProfileFor(f)
	}
	return termenv.Ascii
}

var runCmd = &cobra.Command{
	Use:   "run <blueprint.yaml>",
	Short: "Run one machine in the terminal",
	Long: `Starts a single machine from the blueprint and prints every state it enters.
The command returns when the machine ends, when --for elapses or on interrupt.`,
	Example: `  tinyfsm run traffic-light.yaml --for 10s --signal go@4s --signal stop@8s`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		doc, err := loadDocument(args[0])
		if err != nil {
			return err
		}
		signalFlags, _ := cmd.Flags().GetStringArray("signal")
		schedules, err := parseSchedules(signalFlags)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetDuration("for")
		noBanner, _ := cmd.Flags().GetBool("no-banner")

		out := cmd.OutOrStdout()
		profile := colorProfile(out)
		styler := tui.NewStateStyler(profile)
		if !noBanner && profile != termenv.Ascii {
			tui.PrintBanner(out, profile)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if limit > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, limit)
			defer cancel()
		}
		ctx, finish := context.WithCancel(ctx)
		defer finish()

		printer := domain.LifecycleHooks{
			OnStateEnter: func(e *domain.StateEvent) {
				fmt.Fprintf(out, "[%d] %s\n", e.MachineID, styler.Style(e.State))
			},
			OnMachineTerminate: func(e *domain.MachineEvent) {
				fmt.Fprintf(out, "[%d] %s\n", e.MachineID, styler.Style(domain.StateEnd))
				finish()
			},
		}

		rt, err := tinyfsm.New(
			tinyfsm.WithLogger(logger),
			tinyfsm.WithOutput(out),
			tinyfsm.WithCapacity(1),
			tinyfsm.WithLifecycleHooks(printer),
		)
		if err != nil {
			return err
		}
		bp, err := rt.Compile(doc)
		if err != nil {
			return err
		}

		for _, s := range schedules {
			rt.Loop().AfterFunc(s.after, func() {
				n := rt.Signals().Emit(s.name)
				logger.Info("signal emitted", "signal", s.name, "listeners", n)
			})
		}

		var spawnErr error
		rt.Loop().Do(func() {
			if _, spawnErr = rt.Manager().CreateMachine(bp); spawnErr != nil {
				finish()
			}
		})

		err = rt.Run(ctx)
		switch {
		case spawnErr != nil:
			return spawnErr
		case err == nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil
		default:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Duration("for", 0, "Stop after this long (0 runs until the machine ends)")
	runCmd.Flags().StringArray("signal", nil, "Emit a signal after a delay, as name@delay (repeatable)")
	runCmd.Flags().Bool("no-banner", false, "Do not print the banner")
}
