// Railbot CLI — инструмент командной строки для управления
// бронированием через HTTP API.
//
// Использование:
//
//	railbot [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	booking   Управление workflow бронирования
//	config    Сохранённая конфигурация
//	station   Поиск станций
//	ticket    История бронирований
//	schedule  Расписания запусков
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/railbot/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "railbot",
		Short:         "Railbot CLI — ticket booking automation tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewBookingCmd(clientFn, outputFn),
		cli.NewConfigCmd(clientFn, outputFn),
		cli.NewStationCmd(clientFn, outputFn),
		cli.NewTicketCmd(clientFn, outputFn),
		cli.NewScheduleCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
