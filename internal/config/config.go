package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

const (
	DriverSelenium   = "selenium"
	DriverChrome     = "chrome"
	DriverPlaywright = "playwright"

	DefaultConfigPath   = "config.yaml"
	DefaultRemoteURL    = "http://127.0.0.1:4444/wd/hub"
	DefaultTimeout      = "5 seconds"
	DefaultImplicitWait = "0 seconds"
	DefaultRunOnFailure = "Capture Page Screenshot"
	DefaultApiPort      = "8270"
)

// AppConfig holds the application configuration.
type AppConfig struct {
	Version  string           `yaml:"version"`
	Debug    bool             `yaml:"debug"`
	ApiPort  string           `yaml:"api-port"`
	Driver   string           `yaml:"driver"`
	Library  AppConfigLibrary `yaml:"library"`
	Browser  AppConfigBrowser `yaml:"browser"`
	Headless bool             `yaml:"headless"`
}

// AppConfigLibrary holds the keyword library import arguments.
type AppConfigLibrary struct {
	Timeout                 string `yaml:"timeout"`
	ImplicitWait            string `yaml:"implicit-wait"`
	RunOnFailure            string `yaml:"run-on-failure"`
	ScreenshotRootDirectory string `yaml:"screenshot-root-directory,omitempty"`
}

type AppConfigBrowser struct {
	RemoteURL   string   `yaml:"remote-url"`
	ProxyURL    string   `yaml:"proxy-url,omitempty"`
	ChromePath  string   `yaml:"chrome-path,omitempty"`
	Args        []string `yaml:"args"`
	UserDataDir string   `yaml:"user-data-dir,omitempty"`
	UserAgent   string   `yaml:"user-agent,omitempty"`
	WindowSize  []int    `yaml:"window-size,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *AppConfig {
	cfg := &AppConfig{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig loads configuration from a yaml file and fills in defaults.
func LoadConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config AppConfig
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
	}

	config.applyDefaults()
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks values that cannot be defaulted.
func (c *AppConfig) Validate() error {
	switch c.Driver {
	case DriverSelenium, DriverChrome, DriverPlaywright:
	default:
		return fmt.Errorf("unsupported driver '%s', expected '%s', '%s' or '%s'", c.Driver, DriverSelenium, DriverChrome, DriverPlaywright)
	}
	if len(c.Browser.WindowSize) != 0 && len(c.Browser.WindowSize) != 2 {
		return fmt.Errorf("window-size must be [width, height]")
	}
	return nil
}

func (c *AppConfig) applyDefaults() {
	if c.ApiPort == "" {
		c.ApiPort = DefaultApiPort
	}
	if c.Driver == "" {
		c.Driver = DriverSelenium
	}
	if c.Library.Timeout == "" {
		c.Library.Timeout = DefaultTimeout
	}
	if c.Library.ImplicitWait == "" {
		c.Library.ImplicitWait = DefaultImplicitWait
	}
	if c.Library.RunOnFailure == "" {
		c.Library.RunOnFailure = DefaultRunOnFailure
	}
	if c.Browser.RemoteURL == "" {
		c.Browser.RemoteURL = DefaultRemoteURL
	}
}
