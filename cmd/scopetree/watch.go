package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newWatchCmd(e *env) *cobra.Command {
	var settle time.Duration
	cmd := &cobra.Command{
		Use:   "watch <input>",
		Short: "Re-validate the input every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			check := func() {
				if err := validate(cmd, e, path); err != nil {
					e.logger.Error().Err(err).Str("input", path).Msg("validation failed")
				}
			}
			check()
			return watchFile(cmd.Context(), e.logger, path, settle, check)
		},
	}
	cmd.Flags().DurationVar(&settle, "settle", 100*time.Millisecond, "wait for writes to settle before re-validating")
	return cmd
}

// watchFile calls onChange after path is written, created or replaced,
// coalescing bursts of events that arrive within settle. It returns when
// ctx is done.
func watchFile(ctx context.Context, logger zerolog.Logger, path string, settle time.Duration, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Editors often replace files, so watch the directory and filter.
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug().Str("event", ev.Op.String()).Str("input", path).Msg("input changed")
			if timer == nil {
				timer = time.NewTimer(settle)
			} else {
				timer.Reset(settle)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watch error")
		}
	}
}
