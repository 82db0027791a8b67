package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haxorport/rawrelay/internal/application/service"
	"github.com/haxorport/rawrelay/internal/domain/model"
)

const (
	exampleHost    = "example.com"
	examplePort    = 443
	exampleRequest = "POST / HTTP/1.1\r\n" +
		"Host: example.com\r\n" +
		"Connection: close\r\n" +
		"Content-Type: application/json\r\n" +
		"Content-Length: 16\r\n" +
		"\r\n" +
		`{"key": "value"}`
)

// exampleCmd sends a fixed POST request to example.com over TLS
var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Send a sample POST request to example.com:443",
	Long: `Send a hard-coded JSON POST request to example.com on port 443 over TLS
and print the response. The idle timeout is 4s unless --timeout is given.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		options, err := relayOptions(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if !cmd.Flags().Changed("timeout") {
			options.IdleTimeout = model.ExampleIdleTimeout
		}

		relay, err := Container.NewRelay(model.NewEndpoint(exampleHost, examplePort, true), options)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		Container.Logger.Info("Sending example request to %s", relay.Endpoint())
		response, err := relay.Forward(cmd.Context(), []byte(exampleRequest))
		if err != nil || len(response) == 0 {
			fmt.Println(service.NoResponseMessage)
			return
		}
		fmt.Println(service.DecodeResponse(response))
	},
}

func init() {
	RootCmd.AddCommand(exampleCmd)
}
