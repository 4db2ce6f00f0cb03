package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fm-tuner/tunerd/pkg/daemon"
)

func NewScheduleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedule [cron-expression] [station-id]",
		Aliases: []string{"sch", "sche", "sched"},
		Short:   "Manage the scheduled retune",
		Long: `Manage the scheduled retune (the clock-radio feature).

The schedule command can be used in multiple ways:
  tunerd schedule 'minute hour day month weekday' station  Set the schedule
  tunerd schedule disable                                  Disable the schedule
  tunerd schedule postpone [duration]                      Postpone the next run
  tunerd schedule skip                                     Skip the next run
  tunerd schedule show                                     Show the current schedule`,
		Example: `  tunerd schedule '0 7 * * 1-5' france_info (France Info at 7:00 on weekdays)
  tunerd schedule '0 9 * * 0' fip           (FIP at 9:00 on Sunday)`,
		GroupID: gAdvanced,
		Args:    cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// If no arguments, show the current schedule
			if len(args) == 0 {
				return runScheduleShow(cmd)
			}
			if len(args) != 2 {
				return fmt.Errorf("setting a schedule takes a cron expression and a station id")
			}
			return runScheduleSet(cmd, args[0], args[1])
		},
	}

	cmd.AddCommand(
		newScheduleDisableCommand(),
		newSchedulePostponeCommand(),
		newScheduleSkipCommand(),
		newScheduleShowCommand(),
	)

	return cmd
}

func newScheduleDisableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Disable the scheduled retune",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScheduleDisable(cmd)
		},
	}
}

func newSchedulePostponeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "postpone [duration]",
		Short: "Postpone the next scheduled retune",
		Long: `Postpone the next scheduled retune by a duration.
If no duration is provided, defaults to 1 hour.`,
		Example: `  tunerd schedule postpone      (Postpone by 1 hour)
  tunerd schedule postpone 90m  (Postpone by 90 minutes)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := time.Hour
			if len(args) > 0 {
				parsed, err := time.ParseDuration(args[0])
				if err != nil {
					return fmt.Errorf("invalid duration %q: %w", args[0], err)
				}
				d = parsed
			}

			st, err := apiClient.PostponeSchedule(d)
			if err != nil {
				return err
			}
			cmd.Printf("Next run postponed by %s.\n", d)
			printSchedule(cmd, st)
			return nil
		},
	}
}

func newScheduleSkipCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "skip",
		Short: "Skip the next scheduled retune",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScheduleSkip(cmd)
		},
	}
}

func newScheduleShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current schedule and its next run time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScheduleShow(cmd)
		},
	}
}

func runScheduleSet(cmd *cobra.Command, cronExpr, station string) error {
	if cronExpr == "" {
		return fmt.Errorf("cron expression cannot be empty")
	}
	st, err := apiClient.SetSchedule(cronExpr, station)
	if err != nil {
		return err
	}
	printSchedule(cmd, st)
	return nil
}

func runScheduleDisable(cmd *cobra.Command) error {
	if _, err := apiClient.ClearSchedule(); err != nil {
		return err
	}
	cmd.Println("Schedule disabled.")
	return nil
}

func runScheduleSkip(cmd *cobra.Command) error {
	st, err := apiClient.SkipSchedule()
	if err != nil {
		return err
	}
	cmd.Println("Next scheduled run skipped.")
	printSchedule(cmd, st)
	return nil
}

func runScheduleShow(cmd *cobra.Command) error {
	st, err := apiClient.GetSchedule()
	if err != nil {
		return err
	}
	if !st.Active {
		cmd.Println("No schedule is set.")
		return nil
	}
	printSchedule(cmd, st)
	return nil
}

func printSchedule(cmd *cobra.Command, st *daemon.ScheduleStatus) {
	cmd.Printf("Retune to %s on '%s'.\n", st.Station, st.Cron)
	if !st.NextRun.IsZero() {
		cmd.Printf("Next run: %s\n", st.NextRun.Local().Format(time.DateTime))
	}
}
