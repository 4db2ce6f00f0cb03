package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fm-tuner/tunerd/pkg/daemon"
	"github.com/fm-tuner/tunerd/pkg/version"
)

var (
	// alwaysAllowNonRootAccess indicates whether to always allow non-root users to access the tunerd daemon.
	alwaysAllowNonRootAccess = false
	storePath                = "/var/lib/tunerd/presets.json"
	mockTuner                = false
)

// NewDaemonCommand .
func NewDaemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "daemon",
		Hidden:  true,
		Short:   "Run tunerd daemon in the foreground",
		GroupID: gAdvanced,
		RunE: func(_ *cobra.Command, _ []string) error {
			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
			}).Info("tunerd daemon starting")
			return daemon.Run(daemon.Options{
				ConfigPath:     configPath,
				StorePath:      storePath,
				UnixSocketPath: unixSocketPath,
				AllowNonRoot:   alwaysAllowNonRootAccess,
				MockTuner:      mockTuner,
			})
		},
	}

	f := cmd.Flags()

	f.BoolVar(&alwaysAllowNonRootAccess, "always-allow-non-root-access", false,
		"Always allow non-root users to access the daemon.")
	f.StringVar(&storePath, "store", storePath,
		"Path of the file that keeps the last tuned station across restarts.")
	f.BoolVar(&mockTuner, "mock-tuner", false,
		"Run against a simulated tuner chip instead of the I2C bus.")

	return cmd
}
