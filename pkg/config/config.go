package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	xdgAppName = "laohu-todo"

	tasksFile     = "tasks.json"
	birthdaysFile = "birthdays.json"
	remindersFile = "reminders.json"
)

// Settings are the app-level knobs, distinct from the sync configuration that
// is persisted alongside the task data.
type Settings struct {
	DataDir      string        `mapstructure:"data_dir"`
	SyncInterval time.Duration `mapstructure:"sync_interval"`
	LogFile      string        `mapstructure:"log_file"`
	Verbose      bool          `mapstructure:"verbose"`
}

// DefaultDataDir is where all local records live.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

// Load reads settings from config.yaml in the data dir, with LAOHU_* env
// overrides. A missing config file yields the defaults.
func Load() (*Settings, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return nil, fmt.Errorf("could not locate config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("LAOHU")
	v.AutomaticEnv()

	v.SetDefault("data_dir", dir)
	v.SetDefault("sync_interval", "5m")
	v.SetDefault("log_file", "")
	v.SetDefault("verbose", false)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return &s, nil
}

func (s *Settings) TasksPath() string {
	return filepath.Join(s.DataDir, tasksFile)
}

func (s *Settings) BirthdaysPath() string {
	return filepath.Join(s.DataDir, birthdaysFile)
}

func (s *Settings) RemindersPath() string {
	return filepath.Join(s.DataDir, remindersFile)
}
