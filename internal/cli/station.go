package cli

import (
	"github.com/spf13/cobra"
)

// NewStationCmd создаёт группу команд для поиска станций.
func NewStationCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "station",
		Short: "Station lookup",
	}

	cmd.AddCommand(newStationSearchCmd(clientFn, outputFn))

	return cmd
}

func newStationSearchCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Search stations by code or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := clientFn().SearchStations(args[0])
			if err != nil {
				return err
			}

			headers := []string{"CODE", "NAME"}
			rows := make([][]string, len(result))
			for i, s := range result {
				rows[i] = []string{s.Code, s.Name}
			}

			outputFn().Print(headers, rows, result)
			return nil
		},
	}
}
