package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// fileCmd sends a request file to the target stored in the configuration
var fileCmd = &cobra.Command{
	Use:   "file [requests_file]",
	Short: "Send a request file to the configured target",
	Long: `Send every request in a file to the target set in the configuration file
or through RAWRELAY_TARGET_HOST, RAWRELAY_TARGET_PORT and RAWRELAY_USE_TLS.
Examples:
  rawrelay config set target_host example.com
  rawrelay config set target_port 443
  rawrelay config set use_tls true
  rawrelay file requests.txt`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if !Container.Config.HasTarget() {
			fmt.Println("Error: No target configured. Set target_host and target_port with 'rawrelay config set'.")
			cmd.Usage()
			return
		}

		runRequestFile(cmd, Container.Config.Endpoint(), args[0])
	},
}

func init() {
	RootCmd.AddCommand(fileCmd)
}
