package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Version       int                  `mapstructure:"version"`
	Backends      []BackendConfig      `mapstructure:"backends"`
	Buckets       []BucketConfig       `mapstructure:"buckets"`
	Daemon        DaemonConfig         `mapstructure:"daemon"`
	Notifications []NotificationConfig `mapstructure:"notifications"`
}

type BackendConfig struct {
	Name   string         `mapstructure:"name"`
	Type   string         `mapstructure:"type"` // b2cli or s3
	Config BackendDetails `mapstructure:"config"`
}

type BackendDetails struct {
	// b2cli
	Binary string `mapstructure:"binary"`
	// s3
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

type BucketConfig struct {
	Name       string `mapstructure:"name"`
	Backend    string `mapstructure:"backend"`
	KeepLatest int    `mapstructure:"keep_latest"` // 0 (or omitted) means the default of 1
	DryRun     bool   `mapstructure:"dry_run"`
	Schedule   string `mapstructure:"schedule"` // cron spec, daemon mode only
}

type DaemonConfig struct {
	RunTimeout time.Duration `mapstructure:"run_timeout"`
}

type NotificationConfig struct {
	Type   string              `mapstructure:"type"`
	On     []string            `mapstructure:"on"`
	Config NotificationDetails `mapstructure:"config"`
}

type NotificationDetails struct {
	SMTPHost string            `mapstructure:"smtp_host"`
	SMTPPort int               `mapstructure:"smtp_port"`
	From     string            `mapstructure:"from"`
	To       string            `mapstructure:"to"`
	Username string            `mapstructure:"username"`
	Password string            `mapstructure:"password"`
	URL      string            `mapstructure:"url"`
	Headers  map[string]string `mapstructure:"headers"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ExpandEnv(&cfg)

	return &cfg, nil
}

// ExpandEnv resolves ${VAR} references so secrets can stay out of the file.
func ExpandEnv(cfg *Config) {
	for i := range cfg.Backends {
		b := &cfg.Backends[i]
		b.Name = os.ExpandEnv(b.Name)
		b.Type = os.ExpandEnv(b.Type)
		b.Config.Binary = os.ExpandEnv(b.Config.Binary)
		b.Config.Region = os.ExpandEnv(b.Config.Region)
		b.Config.Endpoint = os.ExpandEnv(b.Config.Endpoint)
		b.Config.AccessKey = os.ExpandEnv(b.Config.AccessKey)
		b.Config.SecretKey = os.ExpandEnv(b.Config.SecretKey)
	}

	for i := range cfg.Buckets {
		bk := &cfg.Buckets[i]
		bk.Name = os.ExpandEnv(bk.Name)
		bk.Backend = os.ExpandEnv(bk.Backend)
		bk.Schedule = os.ExpandEnv(bk.Schedule)
	}

	for i := range cfg.Notifications {
		nt := &cfg.Notifications[i]
		nt.Type = os.ExpandEnv(nt.Type)
		for j := range nt.On {
			nt.On[j] = os.ExpandEnv(nt.On[j])
		}
		nt.Config.SMTPHost = os.ExpandEnv(nt.Config.SMTPHost)
		nt.Config.From = os.ExpandEnv(nt.Config.From)
		nt.Config.To = os.ExpandEnv(nt.Config.To)
		nt.Config.Username = os.ExpandEnv(nt.Config.Username)
		nt.Config.Password = os.ExpandEnv(nt.Config.Password)
		nt.Config.URL = os.ExpandEnv(nt.Config.URL)
		for k, val := range nt.Config.Headers {
			nt.Config.Headers[k] = os.ExpandEnv(val)
		}
	}
}
