package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/mchmarny/sidebar/pkg/host"
	"github.com/mchmarny/sidebar/pkg/server"
)

// appConfig is the runtime configuration of the sidebar host.
type appConfig struct {
	Port           int      `mapstructure:"port"`
	LogLevel       string   `mapstructure:"log-level"`
	MenuFile       string   `mapstructure:"menu-file"`
	HostOrigin     string   `mapstructure:"host-origin"`
	WidgetOrigin   string   `mapstructure:"widget-origin"`
	TargetOrigin   string   `mapstructure:"target-origin"`
	AllowedOrigins []string `mapstructure:"allowed-origins"`
	TLSCert        string   `mapstructure:"tls-cert"`
	TLSKey         string   `mapstructure:"tls-key"`
}

// loadConfig resolves the configuration from defaults, the optional file at
// path, SIDEBAR_* environment variables and the flags explicitly set in fs,
// in increasing order of precedence. Only flags named like a config key apply.
func loadConfig(path string, fs *flag.FlagSet) (appConfig, error) {
	var cfg appConfig

	v := viper.New()
	v.SetEnvPrefix("SIDEBAR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", server.DefaultPort)
	v.SetDefault("log-level", "info")
	v.SetDefault("menu-file", "")
	v.SetDefault("host-origin", host.DefaultHostOrigin)
	v.SetDefault("widget-origin", host.DefaultWidgetOrigin)
	v.SetDefault("target-origin", "*")
	v.SetDefault("allowed-origins", []string{})
	v.SetDefault("tls-cert", "")
	v.SetDefault("tls-key", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	if fs != nil {
		fs.Visit(func(f *flag.Flag) {
			if slices.Contains(v.AllKeys(), f.Name) {
				v.Set(f.Name, f.Value.String())
			}
		})
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return cfg, errors.New("tls-cert and tls-key must be set together")
	}

	return cfg, nil
}
