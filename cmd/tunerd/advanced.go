package main

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewDefaultFrequencyCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "default-frequency [MHz]",
		Short:   "Set the frequency used when no station was ever saved",
		GroupID: gAdvanced,
		Long: `Set the frequency used when no station was ever saved.

On startup the daemon restores the saved station; when the store is empty or
unreadable it tunes to this frequency instead. Must be inside the configured
band.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			mhz, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid frequency: %v", err)
			}

			ret, err := apiClient.SetDefaultFrequency(mhz)
			if err != nil {
				return fmt.Errorf("failed to set default frequency: %w", err)
			}
			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}
			logrus.Infof("successfully set default frequency to %.1f MHz", mhz)
			return nil
		},
	}
}

func NewSeekWrapCommand() *cobra.Command {
	return newEnableDisableCommand(
		"seek-wrap",
		"wrapping around the band edge when seeking",
		`Control whether a seek that reaches the band edge continues from the
opposite edge.

When disabled, a seek that finds no station before the edge gives up there.
Takes effect the next time the daemon starts.`,
		func() (string, error) { return apiClient.SetSeekWrap(true) },
		func() (string, error) { return apiClient.SetSeekWrap(false) },
	)
}

func newEnableDisableCommand(
	use, short, long string,
	enableFunc func() (string, error),
	disableFunc func() (string, error),
) *cobra.Command {
	cmd := &cobra.Command{
		Use:     use,
		Short:   "Enable or disable " + short,
		Long:    long,
		GroupID: gAdvanced,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Enable " + short,
			RunE: func(_ *cobra.Command, _ []string) error {
				ret, err := enableFunc()
				if err != nil {
					return fmt.Errorf("failed to enable %s: %v", use, err)
				}
				if ret != "" {
					logrus.Infof("daemon responded: %s", ret)
				}
				logrus.Infof("successfully enabled %s", use)
				return nil
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Disable " + short,
			RunE: func(_ *cobra.Command, _ []string) error {
				ret, err := disableFunc()
				if err != nil {
					return fmt.Errorf("failed to disable %s: %v", use, err)
				}
				if ret != "" {
					logrus.Infof("daemon responded: %s", ret)
				}
				logrus.Infof("successfully disabled %s", use)
				return nil
			},
		},
	)

	return cmd
}
