package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/haxorport/rawrelay/internal/di"
	"github.com/haxorport/rawrelay/internal/domain/model"
)

var (
	// Container is the dependency injection container
	Container *di.Container

	// ConfigPath is the path to the configuration file
	ConfigPath string

	// LogLevel is the logging level
	LogLevel string

	// Relay option overrides, applied only when the flag is set
	readTimeout    time.Duration
	connectTimeout time.Duration
	maxDuration    time.Duration
	tlsVerify      bool
	tlsFingerprint string
	proxyURL       string
	transportName  string
	wsPath         string

	// Root command target flags
	targetHost  string
	targetPort  int
	requestFile string
	useSSL      bool

	// RootCmd is the root command for CLI
	RootCmd = &cobra.Command{
		Use: "rawrelay [host] [port] [requests_file] [-s]",
		Example: `  rawrelay example.com 443 requests.txt -s
  rawrelay -H example.com -p 443 -r requests.txt -s`,
		Short: "rawrelay - send raw requests to a server and print what comes back",
		Long: `rawrelay reads pre-built requests from a file, one per line, and sends each one
over a fresh TCP (optionally TLS) connection. Whatever the server sends back before it
closes the connection or goes idle is printed.

TLS certificates are NOT verified unless --verify is given.`,
		Args: cobra.MaximumNArgs(3),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize container
			Container = di.NewContainer()

			if err := Container.Initialize(ConfigPath); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}

			// Set log level after container initialization
			if LogLevel != "" {
				Container.Logger.SetLevel(LogLevel)
				Container.Logger.Debug("Log level set to %s", Container.Logger.Level())
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			// Close container
			if Container != nil {
				Container.Close()
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			target, err := resolveTarget(args, targetFlags{
				Host:        targetHost,
				Port:        targetPort,
				RequestFile: requestFile,
			})
			if err != nil {
				if !errors.Is(err, errMissingArguments) {
					fmt.Printf("Error: %v\n", err)
				}
				cmd.Usage()
				return
			}

			endpoint := model.NewEndpoint(target.Host, target.Port, useSSL)
			runRequestFile(cmd, endpoint, target.RequestFile)
		},
	}
)

var errMissingArguments = errors.New("host, port and requests file are required")

// targetFlags holds the values given through -H, -p and -r
type targetFlags struct {
	Host        string
	Port        int
	RequestFile string
}

// resolveTarget merges flags and positional arguments, flags taking precedence
func resolveTarget(args []string, flags targetFlags) (targetFlags, error) {
	target := flags

	if target.Host == "" && len(args) > 0 {
		target.Host = args[0]
	}
	if target.Port == 0 && len(args) > 1 {
		port, err := strconv.Atoi(args[1])
		if err != nil {
			return target, fmt.Errorf("invalid port: %s", args[1])
		}
		target.Port = port
	}
	if target.RequestFile == "" && len(args) > 2 {
		target.RequestFile = args[2]
	}

	if target.Host == "" || target.Port == 0 || target.RequestFile == "" {
		return target, errMissingArguments
	}
	if target.Port < 1 || target.Port > 65535 {
		return target, fmt.Errorf("port must be between 1 and 65535: %d", target.Port)
	}

	return target, nil
}

// relayOptions starts from the loaded configuration and applies the flags that were set
func relayOptions(cmd *cobra.Command) (model.RelayOptions, error) {
	options := Container.Config.RelayOptions()
	flags := cmd.Flags()

	if flags.Changed("timeout") {
		options.IdleTimeout = readTimeout
	}
	if flags.Changed("connect-timeout") {
		options.ConnectTimeout = connectTimeout
	}
	if flags.Changed("max-duration") {
		options.MaxDuration = model.CappedAt(maxDuration)
	}
	if flags.Changed("verify") {
		options.TLSVerify = tlsVerify
	}
	if flags.Changed("fingerprint") {
		options.TLSFingerprint = tlsFingerprint
	}
	if flags.Changed("proxy") {
		options.ProxyURL = proxyURL
	}
	if flags.Changed("transport") {
		transport, err := model.ParseTransportType(transportName)
		if err != nil {
			return options, err
		}
		options.Transport = transport
	}
	if flags.Changed("ws-path") {
		options.WSPath = wsPath
	}

	return options.Normalize(), nil
}

// runRequestFile sends every request in path to endpoint and prints the trace
func runRequestFile(cmd *cobra.Command, endpoint model.Endpoint, path string) {
	options, err := relayOptions(cmd)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	relayService, err := Container.NewRelayService(endpoint, options)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if !options.TLSVerify && endpoint.UseTLS {
		Container.Logger.Debug("TLS certificate verification is disabled for %s", endpoint)
	}

	if _, err := relayService.RunFile(cmd.Context(), path); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}

func init() {
	// Add global flags
	RootCmd.PersistentFlags().StringVarP(&ConfigPath, "config", "c", "", "Path to configuration file (default: ~/.rawrelay/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "Set logging level (debug, info, warn, error)")
	RootCmd.PersistentFlags().DurationVar(&readTimeout, "timeout", model.DefaultIdleTimeout, "Idle timeout for each read")
	RootCmd.PersistentFlags().DurationVar(&connectTimeout, "connect-timeout", 0, "Connect timeout (0 for the system default)")
	RootCmd.PersistentFlags().DurationVar(&maxDuration, "max-duration", 0, "Upper bound on receiving one response (0 for no cap)")
	RootCmd.PersistentFlags().BoolVar(&tlsVerify, "verify", false, "Verify TLS certificates and host names")
	RootCmd.PersistentFlags().StringVar(&tlsFingerprint, "fingerprint", "", "TLS ClientHello fingerprint (chrome, firefox, safari, ios, edge, randomized)")
	RootCmd.PersistentFlags().StringVar(&proxyURL, "proxy", "", "SOCKS5 upstream proxy, e.g. socks5://127.0.0.1:1080")
	RootCmd.PersistentFlags().StringVar(&transportName, "transport", "", "Transport (tcp, websocket)")
	RootCmd.PersistentFlags().StringVar(&wsPath, "ws-path", "", "Request path for the websocket transport")

	// Target flags, used instead of positional arguments
	RootCmd.Flags().StringVarP(&targetHost, "host", "H", "", "Target host (e.g., example.com)")
	RootCmd.Flags().IntVarP(&targetPort, "port", "p", 0, "Target port (e.g., 80 or 443)")
	RootCmd.Flags().StringVarP(&requestFile, "request", "r", "", "File containing requests, one per line")
	RootCmd.Flags().BoolVarP(&useSSL, "ssl", "s", false, "Use TLS for connections")
}
