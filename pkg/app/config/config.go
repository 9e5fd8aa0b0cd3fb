package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"
)

// Config holds the application configuration.
// Config defines the struct of global config and the struct of the configuration file.
type Config struct {
	// Gpio is the BCM pin number the DCF77 receiver module is wired to.
	Gpio int `yaml:"gpio"`
	// Driver selects the gpio driver, "chardev" (default) or "memmap".
	Driver string `yaml:"driver"`
	// Terminator is the input termination: "pullup", "pulldown" or "none".
	Terminator string `yaml:"terminator"`
	// StartEdge is the transition a second mark begins with, "rising" or
	// "falling". Receiver modules with inverted output use "falling".
	StartEdge     string        `yaml:"startedge"`
	BounceTimeInt int           `yaml:"bouncetime"`
	BounceTime    time.Duration `yaml:"-"`
	// Simulate replaces the receiver pin with a signal simulated from the
	// system clock. Useful on machines without receiver hardware.
	Simulate  bool            `yaml:"simulate"`
	Flag      FlagConfig      `yaml:"-"`
	Log       LogConfig       `yaml:"log"`
	Webserver WebserverConfig `yaml:"webserver"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
}

// FlagConfig defines the configured flags (parameters).
type FlagConfig struct {
	LogLevel   string
	ConfigFile string
}

// WebserverConfig defines the struct of the webserver and webservice configuration and configuration file.
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration and configuration file.
type MQTTConfig struct {
	Connection string `yaml:"connection"`
	Topic      string `yaml:"topic"`
}

// LogConfig defines the struct of the log configuration and configuration file.
type LogConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"flag"`
	FileString string         `yaml:"file"`
}

func NewConfig() *Config {
	return &Config{
		Gpio:       17,
		Driver:     "chardev",
		Terminator: "none",
		StartEdge:  "falling",
		Flag:       FlagConfig{},
		Log: LogConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Webserver: WebserverConfig{
			URL: "http://0.0.0.0:4000",
			Webservices: map[string]bool{
				"version": true,
				"health":  true,
				"time":    true,
			},
		},
		MQTT: MQTTConfig{
			Connection: "tcp://127.0.0.1:1883",
			Topic:      "/clock/dcf77",
		},
	}
}

func (c *Config) LoadConfig() error {
	if err := c.readConfigFile(); err != nil {
		return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
	}

	if c.Flag.LogLevel != "" {
		c.Log.FlagString = c.Flag.LogLevel
	}
	if err := c.setLogConfig(); err != nil {
		return fmt.Errorf("unable to open log file %q: %w", c.Log.FileString, err)
	}

	c.BounceTime = time.Duration(c.BounceTimeInt) * time.Millisecond

	return nil
}

func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	if err = decoder.Decode(c); err != nil {
		return err
	}

	return nil
}

func (c *Config) setLogConfig() (err error) {
	switch c.Log.FlagString {
	case "trace", "full":
		c.Log.Flag = debug.Full
	case "debug":
		c.Log.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	case "standard":
		c.Log.Flag = debug.Standard
	}

	switch c.Log.FileString {
	case "stderr":
		c.Log.File = os.Stderr
	case "stdout":
		c.Log.File = os.Stdout
	default:
		if c.Log.File, err = os.OpenFile(c.Log.FileString, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666); err != nil {
			return
		}
	}

	return
}
