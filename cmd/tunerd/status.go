package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fm-tuner/tunerd/pkg/config"
	"github.com/fm-tuner/tunerd/pkg/daemon"
	"github.com/fm-tuner/tunerd/pkg/stations"
)

type statusData struct {
	status *daemon.Status
	config *config.RawFileConfig
}

// fetchStatusData gathers all data required for the status command from the daemon.
func fetchStatusData() (*statusData, error) {
	st, err := apiClient.GetStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to get tuner status: %w", err)
	}

	conf, err := apiClient.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	return &statusData{
		status: st,
		config: conf,
	}, nil
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of the tuner",
		Long:    `Get the tuner state, the current station, and the daemon configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := fetchStatusData()
			if err != nil {
				return err
			}

			conf := config.NewFileFromConfig(data.config, "")
			st := data.status

			cmd.Println(bold("Tuner status:"))

			state := st.State
			switch st.State {
			case "tuned":
				state = color.GreenString("tuned")
			case "seeking":
				state = color.YellowString("seeking")
			}
			cmd.Printf("  State: %s\n", bold("%s", state))
			cmd.Printf("  Frequency: %s\n", bold("%.1f MHz", st.FrequencyMHz))

			if st.StationID != "" {
				name := st.StationID
				if s, ok := stations.ByID(st.StationID); ok {
					name = s.Name
				}
				cmd.Printf("  Station: %s\n", bold("%s", name))
			}

			cmd.Printf("  Stereo: %s\n", bool2Text(st.Stereo))
			cmd.Printf("  Muted: %s\n", bool2Text(st.Muted))
			// The chip reports reception on a 0-15 scale.
			cmd.Printf("  Signal: %s %s\n", bold("%d/15", st.SignalLevel), signalBar(st.SignalLevel))

			cmd.Println()

			cmd.Println(bold("Tuner configuration:"))
			cmd.Printf("  Band: %s\n", bold("%s", conf.Band()))
			cmd.Printf("  Default frequency: %s\n", bold("%.1f MHz", conf.DefaultFrequencyMHz()))
			cmd.Printf("  Wrap at band edge when seeking: %s\n", bool2Text(conf.WrapOnBandEdge()))
			cmd.Printf("  Command policy: %s\n", bold("%s", conf.EventPolicy()))
			cmd.Printf("  Allow non-root users to access the daemon: %s\n", bool2Text(conf.AllowNonRootAccess()))
			return nil
		},
	}
}

func signalBar(level byte) string {
	if level > 15 {
		level = 15
	}
	filled := int(level)
	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", 15-filled)
	switch {
	case level >= 10:
		return color.GreenString(bar)
	case level >= 5:
		return color.YellowString(bar)
	}
	return color.RedString(bar)
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
