package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	daemonutils "github.com/fm-tuner/tunerd/pkg/utils/daemon"
)

func NewInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "install",
		Short:   "Install tunerd as a systemd service",
		GroupID: gAdvanced,
		Long: `Install tunerd as a systemd service so it starts at boot.

Requires root.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if os.Geteuid() != 0 {
				return fmt.Errorf("installation requires root, run with sudo")
			}
			return daemonutils.Install()
		},
	}
}

func NewUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "uninstall",
		Short:   "Stop and remove the tunerd systemd service",
		GroupID: gAdvanced,
		RunE: func(_ *cobra.Command, _ []string) error {
			if os.Geteuid() != 0 {
				return fmt.Errorf("uninstallation requires root, run with sudo")
			}
			return daemonutils.Uninstall()
		},
	}
}
