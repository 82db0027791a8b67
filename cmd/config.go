package cmd

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haxorport/rawrelay/internal/domain/model"
)

// configCmd is the command to manage configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Manage rawrelay configuration.`,
}

// configShowCmd is the command to display configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show configuration",
	Long:  `Display rawrelay configuration, including environment overrides.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := Container.Config

		fmt.Println("rawrelay Configuration:")
		fmt.Printf("Target: %s\n", orNone(targetString()))
		fmt.Printf("TLS Verify: %t\n", cfg.TLSVerify)
		fmt.Printf("TLS Fingerprint: %s\n", orNone(cfg.TLSFingerprint))
		fmt.Printf("Read Timeout: %s\n", cfg.ReadTimeout)
		fmt.Printf("Connect Timeout: %s\n", durationOrDefault(cfg.ConnectTimeout.String(), "system default"))
		fmt.Printf("Max Duration: %s\n", durationOrDefault(cfg.MaxDuration.String(), "no cap"))
		fmt.Printf("Chunk Size: %d\n", cfg.ChunkSize)
		fmt.Printf("Transport: %s\n", cfg.Transport)
		fmt.Printf("WebSocket Path: %s\n", cfg.WSPath)
		fmt.Printf("Proxy: %s\n", orNone(maskProxy(cfg.ProxyURL)))
		fmt.Printf("Log Level: %s\n", cfg.LogLevel)
		fmt.Printf("Log File: %s\n", orNone(cfg.LogFile))
	},
}

// configSetCmd is the command to set configuration
var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set configuration",
	Long: `Set rawrelay configuration.
Keys: ` + strings.Join(model.ConfigKeys, ", ") + `
Examples:
  rawrelay config set target_host example.com
  rawrelay config set target_port 443
  rawrelay config set use_tls true
  rawrelay config set read_timeout 5s
  rawrelay config set log_file /path/to/log.txt`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]
		value := args[1]

		// Update configuration
		if err := Container.ConfigService.SetValue(Container.Config, key, value); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		// Save configuration
		if err := Container.ConfigService.SaveConfig(Container.Config, ConfigPath); err != nil {
			fmt.Printf("Error: Failed to save configuration: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Configuration %s successfully changed to %s\n", key, value)
	},
}

func targetString() string {
	if !Container.Config.HasTarget() {
		return ""
	}
	return Container.Config.Endpoint().String()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func durationOrDefault(s, fallback string) string {
	if s == "0s" {
		return fallback
	}
	return s
}

// maskProxy hides the password of a proxy URL
func maskProxy(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "****"
	}
	return u.Redacted()
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
