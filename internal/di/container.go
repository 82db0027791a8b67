package di

import (
	"fmt"
	"io"
	"os"

	"github.com/haxorport/rawrelay/internal/application/service"
	"github.com/haxorport/rawrelay/internal/domain/model"
	"github.com/haxorport/rawrelay/internal/domain/port"
	"github.com/haxorport/rawrelay/internal/infrastructure/config"
	"github.com/haxorport/rawrelay/internal/infrastructure/logger"
	"github.com/haxorport/rawrelay/internal/infrastructure/requestfile"
	"github.com/haxorport/rawrelay/internal/infrastructure/transport"
)

// Container is a container for dependency injection
type Container struct {
	// Logger
	Logger *logger.Logger

	// Repositories
	ConfigRepository *config.ConfigRepository
	RequestSource    port.RequestSource

	// Services
	ConfigService *service.ConfigService

	// Config
	Config *model.Config

	// Output receives the request trace
	Output io.Writer
}

// NewContainer creates a new Container instance
func NewContainer() *Container {
	return &Container{}
}

// Initialize initializes the container
func (c *Container) Initialize(configPath string) error {
	// Diagnostics go to stderr so stdout only carries the trace
	c.Logger = logger.NewLogger(os.Stderr, string(model.LogLevelWarn))
	if c.Output == nil {
		c.Output = os.Stdout
	}

	// Initialize config repository
	c.ConfigRepository = config.NewConfigRepository()

	// Initialize config service
	c.ConfigService = service.NewConfigService(c.ConfigRepository, c.Logger)

	// Load configuration
	var err error
	c.Config, err = c.ConfigService.LoadConfig(configPath)
	if err != nil {
		return err
	}

	// Set logger level based on configuration
	c.Logger.SetLevel(string(c.Config.LogLevel))

	// If log file is specified, write to the file as well as the terminal
	if c.Config.LogFile != "" {
		fileLogger, err := logger.NewFileLogger(os.Stderr, c.Config.LogFile, string(c.Config.LogLevel))
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		c.Logger = fileLogger
		c.ConfigService = service.NewConfigService(c.ConfigRepository, c.Logger)
		c.Logger.Debug("Logs will also be written to file: %s", c.Config.LogFile)
	}

	// Initialize request source
	c.RequestSource = requestfile.NewSource()

	return nil
}

// NewRelay builds a relay for the endpoint using the transport selected by options
func (c *Container) NewRelay(endpoint model.Endpoint, options model.RelayOptions) (*transport.Relay, error) {
	dialer, err := transport.NewDialer(options, c.Logger)
	if err != nil {
		return nil, err
	}
	return transport.NewRelay(endpoint, dialer, options, c.Logger), nil
}

// NewRelayService builds the batch driver for one endpoint
func (c *Container) NewRelayService(endpoint model.Endpoint, options model.RelayOptions) (*service.RelayService, error) {
	relay, err := c.NewRelay(endpoint, options)
	if err != nil {
		return nil, err
	}
	return service.NewRelayService(c.RequestSource, relay, c.Output, c.Logger), nil
}

// Close closes all resources
func (c *Container) Close() {
	// Close logger
	if c.Logger != nil {
		c.Logger.Close()
	}
}
