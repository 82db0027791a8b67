package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/haxorport/rawrelay/internal/domain/model"
	"github.com/haxorport/rawrelay/internal/domain/port"
)

// EnvPrefix is the prefix of environment overrides, e.g. RAWRELAY_TARGET_HOST
const EnvPrefix = "RAWRELAY"

// ConfigRepository is an implementation of port.ConfigRepository
type ConfigRepository struct{}

// NewConfigRepository creates a new ConfigRepository instance
func NewConfigRepository() *ConfigRepository {
	return &ConfigRepository{}
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, model.NewConfig())

	v.SetConfigFile(configPath)
	if filepath.Ext(configPath) == "" {
		v.SetConfigType("yaml")
	}
	return v
}

func setDefaults(v *viper.Viper, config *model.Config) {
	v.SetDefault(model.KeyTargetHost, config.TargetHost)
	v.SetDefault(model.KeyTargetPort, config.TargetPort)
	v.SetDefault(model.KeyUseTLS, config.UseTLS)
	v.SetDefault(model.KeyTLSVerify, config.TLSVerify)
	v.SetDefault(model.KeyTLSFingerprint, config.TLSFingerprint)
	v.SetDefault(model.KeyReadTimeout, config.ReadTimeout.String())
	v.SetDefault(model.KeyConnectTimeout, config.ConnectTimeout.String())
	v.SetDefault(model.KeyMaxDuration, config.MaxDuration.String())
	v.SetDefault(model.KeyChunkSize, config.ChunkSize)
	v.SetDefault(model.KeyTransport, string(config.Transport))
	v.SetDefault(model.KeyWSPath, config.WSPath)
	v.SetDefault(model.KeyProxyURL, config.ProxyURL)
	v.SetDefault(model.KeyLogLevel, string(config.LogLevel))
	v.SetDefault(model.KeyLogFile, config.LogFile)
}

// Load loads configuration from file, falling back to defaults and environment overrides
// when the file does not exist
func (r *ConfigRepository) Load(configPath string) (*model.Config, error) {
	// If configPath is empty, look in the default location
	if configPath == "" {
		var err error
		configPath, err = r.GetDefaultPath()
		if err != nil {
			return nil, err
		}
	}

	v := newViper(configPath)

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("error checking config file: %w", err)
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*model.Config, error) {
	transport, err := model.ParseTransportType(v.GetString(model.KeyTransport))
	if err != nil {
		return nil, err
	}

	logLevel, err := model.ParseLogLevel(v.GetString(model.KeyLogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", model.KeyLogLevel, err)
	}

	config := model.NewConfig()
	config.LogLevel = logLevel
	for _, d := range []struct {
		key       string
		target    *time.Duration
		allowZero bool
	}{
		{model.KeyReadTimeout, &config.ReadTimeout, false},
		{model.KeyConnectTimeout, &config.ConnectTimeout, true},
		{model.KeyMaxDuration, &config.MaxDuration, true},
	} {
		value, err := model.ParseTimeout(v.GetString(d.key), d.allowZero)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.target = value
	}
	config.TargetHost = v.GetString(model.KeyTargetHost)
	config.TargetPort = v.GetInt(model.KeyTargetPort)
	config.UseTLS = v.GetBool(model.KeyUseTLS)
	config.TLSVerify = v.GetBool(model.KeyTLSVerify)
	config.TLSFingerprint = v.GetString(model.KeyTLSFingerprint)
	config.ChunkSize = v.GetInt(model.KeyChunkSize)
	config.Transport = transport
	config.WSPath = v.GetString(model.KeyWSPath)
	config.ProxyURL = v.GetString(model.KeyProxyURL)
	config.LogFile = v.GetString(model.KeyLogFile)

	if config.TargetPort < 0 || config.TargetPort > 65535 {
		return nil, fmt.Errorf("invalid %s: %d", model.KeyTargetPort, config.TargetPort)
	}

	return config, nil
}

// Save saves configuration to file
func (r *ConfigRepository) Save(config *model.Config, configPath string) error {
	// If configPath is empty, use default location
	if configPath == "" {
		var err error
		configPath, err = r.GetDefaultPath()
		if err != nil {
			return err
		}
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	if filepath.Ext(configPath) == "" {
		v.SetConfigType("yaml")
	}

	v.Set(model.KeyTargetHost, config.TargetHost)
	v.Set(model.KeyTargetPort, config.TargetPort)
	v.Set(model.KeyUseTLS, config.UseTLS)
	v.Set(model.KeyTLSVerify, config.TLSVerify)
	v.Set(model.KeyTLSFingerprint, config.TLSFingerprint)
	v.Set(model.KeyReadTimeout, config.ReadTimeout.String())
	v.Set(model.KeyConnectTimeout, config.ConnectTimeout.String())
	v.Set(model.KeyMaxDuration, config.MaxDuration.String())
	v.Set(model.KeyChunkSize, config.ChunkSize)
	v.Set(model.KeyTransport, string(config.Transport))
	v.Set(model.KeyWSPath, config.WSPath)
	v.Set(model.KeyProxyURL, config.ProxyURL)
	v.Set(model.KeyLogLevel, string(config.LogLevel))
	v.Set(model.KeyLogFile, config.LogFile)

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("error saving configuration: %w", err)
	}

	return nil
}

// GetDefaultPath returns the default path for configuration file
func (r *ConfigRepository) GetDefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %w", err)
	}

	return filepath.Join(homeDir, ".rawrelay", "config.yaml"), nil
}

// Ensure ConfigRepository implements port.ConfigRepository
var _ port.ConfigRepository = (*ConfigRepository)(nil)
