// Package config provides configuration management for piwake.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/tilmanv/piwake/internal/domain"
)

// Config holds all configuration for the piwake daemon.
type Config struct {
	Clock         ClockConfig        `mapstructure:"clock"`
	Audio         AudioConfig        `mapstructure:"audio"`
	Broker        BrokerConfig       `mapstructure:"broker"`
	Location      LocationConfig     `mapstructure:"location"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Storage       StorageConfig      `mapstructure:"storage"`
}

// ClockConfig holds the alarm clock behaviour settings.
type ClockConfig struct {
	DefaultVolume      float64  `mapstructure:"default_volume"`
	AlarmDuration      Duration `mapstructure:"alarm_duration"`
	RefreshInterval    Duration `mapstructure:"refresh_interval"`
	PowernapDuration   Duration `mapstructure:"powernap_duration"`
	AlarmPreviewHours  int      `mapstructure:"alarm_preview_hours"`
	VolumeMeterTimeout Duration `mapstructure:"volume_meter_timeout"`
}

// AudioConfig holds playback settings.
type AudioConfig struct {
	MediaDir         string `mapstructure:"media_dir"`
	OfflineAlarmFile string `mapstructure:"offline_alarm_file"`
}

// BrokerConfig holds MQTT telemetry settings. Telemetry is disabled
// when URL is empty.
type BrokerConfig struct {
	URL string `mapstructure:"url"`
}

// LocationConfig pins the device location for sunrise and sunset
// computation. When both values are zero the location is resolved by
// IP geolocation at startup.
type LocationConfig struct {
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
}

// NotificationConfig holds desktop notification settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// Duration is a wrapper around time.Duration for TOML parsing.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String returns the string representation of the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Clock: ClockConfig{
			DefaultVolume:      0.4,
			AlarmDuration:      Duration(60 * time.Minute),
			RefreshInterval:    Duration(250 * time.Millisecond),
			PowernapDuration:   Duration(18 * time.Minute),
			AlarmPreviewHours:  12,
			VolumeMeterTimeout: Duration(5 * time.Second),
		},
		Audio: AudioConfig{
			MediaDir:         "~/.piwake/media",
			OfflineAlarmFile: "Enchantment.ogg",
		},
		Broker: BrokerConfig{
			URL: "",
		},
		Location: LocationConfig{},
		Notifications: NotificationConfig{
			Enabled: true,
		},
		Storage: StorageConfig{
			DataDir: "~/.piwake",
		},
	}
}

// Load loads the configuration from the config file.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("toml")

	setDefaults()

	// If config file doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Storage.DataDir, err = expandHome(cfg.Storage.DataDir, ".piwake")
	if err != nil {
		return nil, err
	}
	cfg.Audio.MediaDir, err = expandHome(cfg.Audio.MediaDir, ".piwake/media")
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save saves the configuration to the config file.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("toml")

	viper.Set("clock.default_volume", cfg.Clock.DefaultVolume)
	viper.Set("clock.alarm_duration", cfg.Clock.AlarmDuration.String())
	viper.Set("clock.refresh_interval", cfg.Clock.RefreshInterval.String())
	viper.Set("clock.powernap_duration", cfg.Clock.PowernapDuration.String())
	viper.Set("clock.alarm_preview_hours", cfg.Clock.AlarmPreviewHours)
	viper.Set("clock.volume_meter_timeout", cfg.Clock.VolumeMeterTimeout.String())
	viper.Set("audio.media_dir", cfg.Audio.MediaDir)
	viper.Set("audio.offline_alarm_file", cfg.Audio.OfflineAlarmFile)
	viper.Set("broker.url", cfg.Broker.URL)
	viper.Set("location.latitude", cfg.Location.Latitude)
	viper.Set("location.longitude", cfg.Location.Longitude)
	viper.Set("notifications.enabled", cfg.Notifications.Enabled)
	viper.Set("storage.data_dir", cfg.Storage.DataDir)

	return viper.WriteConfig()
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".piwake", "config.toml"), nil
}

// GetDBPath returns the path to the database file.
func GetDBPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "piwake.db")
}

// setDefaults sets default values for viper.
func setDefaults() {
	viper.SetDefault("clock.default_volume", 0.4)
	viper.SetDefault("clock.alarm_duration", "1h0m0s")
	viper.SetDefault("clock.refresh_interval", "250ms")
	viper.SetDefault("clock.powernap_duration", "18m0s")
	viper.SetDefault("clock.alarm_preview_hours", 12)
	viper.SetDefault("clock.volume_meter_timeout", "5s")
	viper.SetDefault("audio.media_dir", "~/.piwake/media")
	viper.SetDefault("audio.offline_alarm_file", "Enchantment.ogg")
	viper.SetDefault("broker.url", "")
	viper.SetDefault("location.latitude", 0.0)
	viper.SetDefault("location.longitude", 0.0)
	viper.SetDefault("notifications.enabled", true)
	viper.SetDefault("storage.data_dir", "~/.piwake")
}

// ToDomainSettings converts the config to the domain device settings.
func (c *Config) ToDomainSettings() domain.Settings {
	return domain.Settings{
		DefaultVolume:      c.Clock.DefaultVolume,
		AlarmDuration:      time.Duration(c.Clock.AlarmDuration),
		RefreshInterval:    time.Duration(c.Clock.RefreshInterval),
		PowernapDuration:   time.Duration(c.Clock.PowernapDuration),
		AlarmPreviewHours:  c.Clock.AlarmPreviewHours,
		OfflineAlarmFile:   c.Audio.OfflineAlarmFile,
		VolumeMeterTimeout: time.Duration(c.Clock.VolumeMeterTimeout),
	}
}

// HasLocation reports whether a fixed location is configured.
func (c *Config) HasLocation() bool {
	return c.Location.Latitude != 0 || c.Location.Longitude != 0
}

func expandHome(dir, fallback string) (string, error) {
	if dir != "" && dir[0] != '~' {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if dir == "" || dir == "~" {
		return filepath.Join(homeDir, fallback), nil
	}
	return filepath.Join(homeDir, dir[2:]), nil
}
