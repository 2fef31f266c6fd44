package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	log "github.com/sirupsen/logrus"
)

var v = viper.New()

var C *Config

// Initialise loads sesdev.yml from the usual locations (or from an explicit
// path) and populates C, falling back to built-in defaults when no config
// file exists. Environment variables override file values.
func Initialise(configFile string) {
	v.SetConfigName("sesdev")
	v.AddConfigPath("$HOME/.sesdev")
	v.AddConfigPath(".")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("sesdev")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	hasConfig := true
	err := v.ReadInConfig()
	if err != nil {
		hasConfig = false
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Debug("no config file found")
		} else {
			log.WithError(err).Panic("failed to read config file")
		}
	}
	log.WithField("config file", v.ConfigFileUsed()).Debug()

	if hasConfig {
		if err := v.Unmarshal(&C); err != nil {
			log.WithError(err).Panic("failed to unmarshal config")
		}
	} else {
		C = &Config{}
	}
	C.applyDefaults()
	log.WithField("config", C).Debug("initialised config")
}

func (c *Config) applyDefaults() {
	if c.WorkPath == "" {
		home, _ := os.UserHomeDir()
		c.WorkPath = filepath.Join(home, ".sesdev")
	}
	if c.Defaults.CPUs == 0 {
		c.Defaults.CPUs = 2
	}
	if c.Defaults.RAM == 0 {
		c.Defaults.RAM = 4
	}
	if c.Defaults.DiskSize == 0 {
		c.Defaults.DiskSize = 8
	}
	if c.Defaults.NumDisks == 0 {
		c.Defaults.NumDisks = 2
	}
	if c.Libvirt.StoragePool == "" {
		c.Libvirt.StoragePool = "default"
	}
}
