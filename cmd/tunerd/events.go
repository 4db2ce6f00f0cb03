package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fm-tuner/tunerd/pkg/events"
)

func NewEventsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "events",
		Short:   "Follow tuner events as they happen",
		GroupID: gAdvanced,
		Long: `Follow tuner events as they happen.

Prints one line per event (tune, seek, save) until interrupted. Useful to
watch what a remote or a schedule is doing to the tuner.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigc := make(chan os.Signal, 1)
			signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigc
				cancel()
			}()

			return apiClient.WatchEvents(ctx, func(ev events.Event) {
				ts := time.Now().Format(time.TimeOnly)

				switch ev.Name {
				case events.TunerTuned:
					p, err := events.DecodeAs[events.TunedEvent](ev)
					if err != nil {
						break
					}
					if p.StationID != "" {
						cmd.Printf("%s  tuned  %.1f MHz (%s)\n", ts, p.FrequencyMHz, p.StationID)
					} else {
						cmd.Printf("%s  tuned  %.1f MHz\n", ts, p.FrequencyMHz)
					}
				case events.TunerSeek:
					p, err := events.DecodeAs[events.SeekEvent](ev)
					if err != nil {
						break
					}
					stereo := "mono"
					if p.Stereo {
						stereo = "stereo"
					}
					cmd.Printf("%s  seek %s found %.1f MHz (%s)\n", ts, p.Direction, p.FrequencyMHz, stereo)
				case events.TunerSaved:
					p, err := events.DecodeAs[events.SavedEvent](ev)
					if err != nil {
						break
					}
					cmd.Printf("%s  saved  %.1f MHz\n", ts, p.FrequencyMHz)
				}
			})
		},
	}
}
