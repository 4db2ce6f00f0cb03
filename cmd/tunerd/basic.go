package main

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fm-tuner/tunerd/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

func NewTuneCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "tune [station-id or frequency]",
		Short:   "Tune to a station or a frequency in MHz",
		GroupID: gBasic,
		Long: `Tune to a station or a frequency in MHz.

The argument is either a station id from 'tunerd stations' or a frequency
like 105.5. Frequencies outside the configured band are clamped to the
nearest band edge.`,
		Example: `  tunerd tune france_info
  tunerd tune 105.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if mhz, err := strconv.ParseFloat(args[0], 64); err == nil {
				res, err := apiClient.TuneFrequency(mhz)
				if err != nil {
					return fmt.Errorf("failed to tune: %w", err)
				}
				logrus.Infof("tuned to %.1f MHz", res.FrequencyMHz)
				return nil
			}

			res, err := apiClient.TuneStation(args[0])
			if err != nil {
				return fmt.Errorf("failed to tune: %w", err)
			}
			logrus.Infof("tuned to %s (%.1f MHz)", res.StationID, res.FrequencyMHz)
			return nil
		},
	}
}

func NewSeekCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "seek [up|down]",
		Short:   "Search for the next station",
		GroupID: gBasic,
		Long: `Search for the next receivable station above (up) or below (down) the
current frequency. The search wraps around the band edge when nothing is
found before it, unless wrapping is disabled in the config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir, err := parseDirectionArg(args[0])
			if err != nil {
				return err
			}

			res, err := apiClient.Seek(dir)
			if err != nil {
				return fmt.Errorf("seek failed: %w", err)
			}
			logrus.Infof("found station at %.1f MHz", res.FrequencyMHz)
			return nil
		},
	}
}

func NewStepCommand() *cobra.Command {
	fine := false

	cmd := &cobra.Command{
		Use:     "step [up|down]",
		Short:   "Step the frequency by 1.0 MHz (or 0.1 MHz with --fine)",
		GroupID: gBasic,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir, err := parseDirectionArg(args[0])
			if err != nil {
				return err
			}

			granularity := "coarse"
			if fine {
				granularity = "fine"
			}

			res, err := apiClient.Step(dir, granularity)
			if err != nil {
				return fmt.Errorf("step failed: %w", err)
			}
			logrus.Infof("now at %.1f MHz", res.FrequencyMHz)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fine, "fine", false, "step by 0.1 MHz instead of 1.0 MHz")

	return cmd
}

func NewSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "save",
		Short:   "Save the current station so it survives a restart",
		GroupID: gBasic,
		RunE: func(_ *cobra.Command, _ []string) error {
			res, err := apiClient.Save()
			if err != nil {
				return fmt.Errorf("failed to save: %w", err)
			}
			logrus.Infof("saved %.1f MHz", res.FrequencyMHz)
			return nil
		},
	}
}

func NewMuteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mute",
		Short:   "Mute or unmute the audio output",
		GroupID: gBasic,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "on",
			Short: "Mute the audio output",
			RunE: func(_ *cobra.Command, _ []string) error {
				if _, err := apiClient.SetMute(true); err != nil {
					return fmt.Errorf("failed to mute: %w", err)
				}
				logrus.Info("muted")
				return nil
			},
		},
		&cobra.Command{
			Use:   "off",
			Short: "Unmute the audio output",
			RunE: func(_ *cobra.Command, _ []string) error {
				if _, err := apiClient.SetMute(false); err != nil {
					return fmt.Errorf("failed to unmute: %w", err)
				}
				logrus.Info("unmuted")
				return nil
			},
		},
	)

	return cmd
}

func NewStationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "stations",
		Short:   "List the known stations",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := apiClient.GetStations()
			if err != nil {
				return fmt.Errorf("failed to list stations: %w", err)
			}

			for _, s := range list {
				cmd.Printf("%-24s %6.1f MHz  %s\n", s.ID, s.FrequencyMHz, s.Name)
			}
			return nil
		},
	}
}
