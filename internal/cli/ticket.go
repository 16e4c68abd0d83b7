package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewTicketCmd создаёт группу команд для истории тикетов.
func NewTicketCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Booking history",
	}

	cmd.AddCommand(
		newTicketListCmd(clientFn, outputFn),
		newTicketShowCmd(clientFn, outputFn),
		newTicketDeleteCmd(clientFn, outputFn),
	)

	return cmd
}

func newTicketListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var status string
	var username string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List booking tickets",
		RunE: func(cmd *cobra.Command, args []string) error {
			tickets, err := clientFn().ListTickets(ListTicketsOpts{
				Status:   status,
				Username: username,
				Limit:    limit,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "TRAIN", "ROUTE", "DATE", "QUOTA", "STATUS", "ATTEMPTS"}
			rows := make([][]string, len(tickets))
			for i, t := range tickets {
				rows[i] = []string{
					t.ID,
					t.TrainNo,
					t.SourceStation + "-" + t.DestinationStation,
					t.TravelDate,
					t.Quota,
					t.Status,
					strconv.Itoa(t.AttemptCount),
				}
			}

			outputFn().Print(headers, rows, tickets)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (PENDING, RUNNING, BOOKED, FAILED)")
	cmd.Flags().StringVar(&username, "username", "", "Filter by IRCTC username")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newTicketShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show ticket details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticket, err := clientFn().GetTicket(args[0])
			if err != nil {
				return err
			}

			outputFn().Record([][2]string{
				{"ID", ticket.ID},
				{"TRAIN", ticket.TrainNo},
				{"ROUTE", ticket.SourceStation + "-" + ticket.DestinationStation},
				{"DATE", ticket.TravelDate},
				{"STATUS", ticket.Status},
				{"ERROR", ticket.LastError},
				{"CREATED", ticket.CreatedAt},
			}, ticket)
			return nil
		},
	}
}

func newTicketDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a ticket from history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFn().DeleteTicket(args[0]); err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Ticket deleted: %s", args[0]))
			return nil
		},
	}
}
