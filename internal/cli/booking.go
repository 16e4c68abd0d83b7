package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewBookingCmd создаёт группу команд для управления бронированием.
func NewBookingCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "booking",
		Short: "Manage the booking workflow",
	}

	cmd.AddCommand(
		newBookingStartCmd(clientFn, outputFn),
		newBookingStopCmd(clientFn, outputFn),
		newBookingPauseCmd(clientFn, outputFn),
		newBookingResumeCmd(clientFn, outputFn),
		newBookingRecoverCmd(clientFn, outputFn),
		newBookingStatusCmd(clientFn, outputFn),
		newBookingLogsCmd(clientFn, outputFn),
	)

	return cmd
}

func newBookingStartCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a booking workflow",
		Long: "Start a booking workflow from a request file (--file) or from the\n" +
			"config saved on the server.",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			var request json.RawMessage
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read request file: %w", err)
				}
				request = data
			} else {
				saved, err := client.GetConfig()
				if err != nil {
					return fmt.Errorf("no --file given and no saved config: %w", err)
				}
				request = saved
			}

			status, err := client.StartBooking(request)
			if err != nil {
				return err
			}

			out.Success("Booking started")
			printStatus(out, status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Booking request JSON file")

	return cmd
}

func newBookingStopCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running workflow",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := clientFn().StopBooking()
			if err != nil {
				return err
			}

			out := outputFn()
			out.Success("Booking stopped")
			printStatus(out, status)
			return nil
		},
	}
}

func newBookingPauseCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause the running workflow",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := clientFn().PauseBooking()
			if err != nil {
				return err
			}

			out := outputFn()
			out.Success("Booking paused")
			printStatus(out, status)
			return nil
		},
	}
}

func newBookingResumeCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume the paused workflow",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := clientFn().ResumeBooking()
			if err != nil {
				return err
			}

			out := outputFn()
			out.Success("Booking resumed")
			printStatus(out, status)
			return nil
		},
	}
}

func newBookingRecoverCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Restart the workflow from the saved checkpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := clientFn().RecoverBooking()
			if err != nil {
				return err
			}

			out := outputFn()
			out.Success("Booking recovered")
			printStatus(out, status)
			return nil
		},
	}
}

func newBookingStatusCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show engine status",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := clientFn().BookingStatus()
			if err != nil {
				return err
			}

			printStatus(outputFn(), status)
			return nil
		},
	}
}

func newBookingLogsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := clientFn().Logs(limit)
			if err != nil {
				return err
			}

			headers := []string{"TIME", "LEVEL", "MESSAGE"}
			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{e.Time, e.Level, e.Message}
			}

			outputFn().Print(headers, rows, entries)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of entries")

	return cmd
}

func printStatus(out *Output, status *StatusResponse) {
	out.Record([][2]string{
		{"RUNNING", fmt.Sprintf("%t", status.Running)},
		{"STATE", status.State},
		{"LAST_ERROR", status.LastError},
		{"ACTIONS", strings.Join(status.Actions, ",")},
	}, status)
}
