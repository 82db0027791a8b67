package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/haxorport/rawrelay/internal/domain/model"
	"github.com/haxorport/rawrelay/internal/domain/port"
)

// ConfigService is a service for managing configuration
type ConfigService struct {
	configRepo port.ConfigRepository
	logger     port.Logger
}

// NewConfigService creates a new ConfigService instance
func NewConfigService(configRepo port.ConfigRepository, logger port.Logger) *ConfigService {
	return &ConfigService{
		configRepo: configRepo,
		logger:     logger,
	}
}

// LoadConfig loads configuration from a file
func (s *ConfigService) LoadConfig(configPath string) (*model.Config, error) {
	// If configPath is empty, use the default path
	if configPath == "" {
		var err error
		configPath, err = s.configRepo.GetDefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get default path: %w", err)
		}
	}

	cfg, err := s.configRepo.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}

	s.logger.Debug("Configuration loaded from %s", configPath)

	return cfg, nil
}

// SaveConfig saves configuration to a file
func (s *ConfigService) SaveConfig(cfg *model.Config, configPath string) error {
	// If configPath is empty, use the default path
	if configPath == "" {
		var err error
		configPath, err = s.configRepo.GetDefaultPath()
		if err != nil {
			return fmt.Errorf("failed to get default path: %w", err)
		}
	}

	if err := s.configRepo.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	s.logger.Info("Configuration saved to %s", configPath)

	return nil
}

// SetValue parses value and assigns it to the configuration key
func (s *ConfigService) SetValue(cfg *model.Config, key, value string) error {
	switch key {
	case model.KeyTargetHost:
		cfg.TargetHost = value
	case model.KeyTargetPort:
		targetPort, err := strconv.Atoi(value)
		if err != nil || targetPort < 1 || targetPort > 65535 {
			return fmt.Errorf("port must be a number between 1 and 65535: %s", value)
		}
		cfg.TargetPort = targetPort
	case model.KeyUseTLS:
		return setBool(&cfg.UseTLS, value)
	case model.KeyTLSVerify:
		return setBool(&cfg.TLSVerify, value)
	case model.KeyTLSFingerprint:
		if err := model.ValidateFingerprint(value); err != nil {
			return err
		}
		cfg.TLSFingerprint = value
	case model.KeyReadTimeout:
		return setDuration(&cfg.ReadTimeout, value, false)
	case model.KeyConnectTimeout:
		return setDuration(&cfg.ConnectTimeout, value, true)
	case model.KeyMaxDuration:
		return setDuration(&cfg.MaxDuration, value, true)
	case model.KeyChunkSize:
		size, err := strconv.Atoi(value)
		if err != nil || size <= 0 {
			return fmt.Errorf("chunk size must be a positive number: %s", value)
		}
		cfg.ChunkSize = size
	case model.KeyTransport:
		t, err := model.ParseTransportType(value)
		if err != nil {
			return err
		}
		cfg.Transport = t
	case model.KeyWSPath:
		cfg.WSPath = value
	case model.KeyProxyURL:
		cfg.ProxyURL = value
	case model.KeyLogLevel:
		level, err := model.ParseLogLevel(value)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	case model.KeyLogFile:
		cfg.LogFile = value
	default:
		return fmt.Errorf("invalid configuration key: %s", key)
	}
	return nil
}

func setBool(target *bool, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("expected true or false: %s", value)
	}
	*target = b
	return nil
}

func setDuration(target *time.Duration, value string, allowZero bool) error {
	d, err := model.ParseTimeout(value, allowZero)
	if err != nil {
		return err
	}
	*target = d
	return nil
}
