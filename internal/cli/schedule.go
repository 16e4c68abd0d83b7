package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewScheduleCmd создаёт группу команд для расписаний запуска.
func NewScheduleCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage booking schedules",
	}

	cmd.AddCommand(
		newScheduleListCmd(clientFn, outputFn),
		newScheduleCreateCmd(clientFn, outputFn),
		newScheduleDeleteCmd(clientFn, outputFn),
	)

	return cmd
}

func newScheduleListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			schedules, err := clientFn().ListSchedules()
			if err != nil {
				return err
			}

			headers := []string{"ID", "TRAIN", "ROUTE", "WHEN", "ENABLED", "NEXT_DUE"}
			rows := make([][]string, len(schedules))
			for i, s := range schedules {
				when := s.CronExpr
				if when == "" {
					when = s.StartAt
				}
				rows[i] = []string{
					s.ID,
					s.TrainNo,
					s.Route,
					when,
					strconv.FormatBool(s.Enabled),
					s.NextDueAt,
				}
			}

			outputFn().Print(headers, rows, schedules)
			return nil
		},
	}
}

func newScheduleCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string
	var startAt string
	var cronExpr string
	var timezone string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Schedule a booking start",
		Long: "Schedule a booking from a request file, either once (--at RFC3339)\n" +
			"or repeatedly (--cron \"30 9 * * *\").",
		RunE: func(cmd *cobra.Command, args []string) error {
			if startAt == "" && cronExpr == "" {
				return fmt.Errorf("either --at or --cron is required")
			}

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read request file: %w", err)
			}

			req := CreateScheduleRequest{
				Request:  data,
				CronExpr: cronExpr,
				Timezone: timezone,
			}
			if startAt != "" {
				req.StartAt = &startAt
			}

			schedule, err := clientFn().CreateSchedule(req)
			if err != nil {
				return err
			}

			out := outputFn()
			out.Success(fmt.Sprintf("Schedule created: %s", schedule.ID))
			out.Print(
				[]string{"ID", "TRAIN", "ROUTE", "NEXT_DUE"},
				[][]string{{schedule.ID, schedule.TrainNo, schedule.Route, schedule.NextDueAt}},
				schedule,
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Booking request JSON file")
	cmd.Flags().StringVar(&startAt, "at", "", "One-shot start time (RFC3339)")
	cmd.Flags().StringVar(&cronExpr, "cron", "", "Cron expression (5 fields)")
	cmd.Flags().StringVar(&timezone, "tz", "", "IANA timezone (default UTC)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newScheduleDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFn().DeleteSchedule(args[0]); err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Schedule deleted: %s", args[0]))
			return nil
		},
	}
}
