package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewConfigCmd создаёт группу команд для сохранённой конфигурации.
func NewConfigCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the saved booking config",
	}

	cmd.AddCommand(
		newConfigShowCmd(clientFn, outputFn),
		newConfigSaveCmd(clientFn, outputFn),
		newConfigDeleteCmd(clientFn, outputFn),
	)

	return cmd
}

func newConfigShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the saved booking config",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := clientFn().GetConfig()
			if err != nil {
				return err
			}

			outputFn().JSON(raw)
			return nil
		},
	}
}

func newConfigSaveCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string
	var encrypt bool

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a booking config on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read config file: %w", err)
			}

			if err := clientFn().SaveConfig(data, encrypt); err != nil {
				return err
			}

			outputFn().Success("Config saved")
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Booking request JSON file")
	cmd.Flags().BoolVar(&encrypt, "encrypt", false, "Store the config encrypted")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newConfigDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the saved booking config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFn().DeleteConfig(); err != nil {
				return err
			}

			outputFn().Success("Config deleted")
			return nil
		},
	}
}
