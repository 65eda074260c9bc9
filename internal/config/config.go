// Package config loads daemon settings from environment and .env file
package config

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Spool     SpoolConfig
	Discovery DiscoveryConfig
}

type ServerConfig struct {
	Addr    string
	DataDir string
}

type SpoolConfig struct {
	MaxRequeues int
	DialTimeout time.Duration
}

type DiscoveryConfig struct {
	Subnets      []string
	Ports        []int
	ProbeTimeout time.Duration
	BLEWindow    time.Duration
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("no .env file, using environment variables: %v", err)
	}

	viper.SetDefault("SERVER_ADDR", "0.0.0.0:12212")
	viper.SetDefault("DATA_DIR", defaultDataDir())
	viper.SetDefault("SPOOL_MAX_REQUEUES", 1)
	viper.SetDefault("SPOOL_DIAL_TIMEOUT_MS", 3000)
	viper.SetDefault("DISCOVERY_SUBNETS", []string{"192.168.1.0/24", "10.0.0.0/24"})
	viper.SetDefault("DISCOVERY_PORTS", []int{9100, 515, 631})
	viper.SetDefault("DISCOVERY_PROBE_TIMEOUT_MS", 300)
	viper.SetDefault("DISCOVERY_BLE_WINDOW_MS", 5000)

	return &Config{
		Server: ServerConfig{
			Addr:    viper.GetString("SERVER_ADDR"),
			DataDir: viper.GetString("DATA_DIR"),
		},
		Spool: SpoolConfig{
			MaxRequeues: viper.GetInt("SPOOL_MAX_REQUEUES"),
			DialTimeout: time.Duration(viper.GetInt("SPOOL_DIAL_TIMEOUT_MS")) * time.Millisecond,
		},
		Discovery: DiscoveryConfig{
			Subnets:      viper.GetStringSlice("DISCOVERY_SUBNETS"),
			Ports:        viper.GetIntSlice("DISCOVERY_PORTS"),
			ProbeTimeout: time.Duration(viper.GetInt("DISCOVERY_PROBE_TIMEOUT_MS")) * time.Millisecond,
			BLEWindow:    time.Duration(viper.GetInt("DISCOVERY_BLE_WINDOW_MS")) * time.Millisecond,
		},
	}
}

// ProfilePath is where the profile store file lives inside the data dir
func (c *Config) ProfilePath() string {
	return filepath.Join(c.Server.DataDir, "profiles.json")
}

func defaultDataDir() string {
	var dir string
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			dir = filepath.Join(appData, "print-engine")
		}
	} else if home, err := os.UserHomeDir(); err == nil && home != "" {
		dir = filepath.Join(home, ".config", "print-engine")
	}
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
		return "."
	}
	return dir
}
