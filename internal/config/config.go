package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

type Config struct {
	// OutputName selects the display to capture; empty means the main display.
	OutputName    string `mapstructure:"output_name"`
	TargetFPS     int    `mapstructure:"target_fps"`
	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`
	OutputFormat  string `mapstructure:"output_format"`
}

func Default() *Config {
	return &Config{
		TargetFPS:     60,
		LogLevel:      "info",
		LogFormat:     "text",
		LogMaxSizeMB:  10,
		LogMaxBackups: 3,
		OutputFormat:  "text",
	}
}

// Load reads cfgFile, or display.yaml from the config dir or the working
// directory when cfgFile is empty. A missing default file is not an error.
// BREEZE_* environment variables override file values.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()
	v := newViper(cfg)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("display")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newViper registers defaults for every key so AutomaticEnv can override
// keys that are absent from the file.
func newViper(defaults *Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("BREEZE")
	v.AutomaticEnv()

	v.SetDefault("output_name", defaults.OutputName)
	v.SetDefault("target_fps", defaults.TargetFPS)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("log_max_size_mb", defaults.LogMaxSizeMB)
	v.SetDefault("log_max_backups", defaults.LogMaxBackups)
	v.SetDefault("output_format", defaults.OutputFormat)
	return v
}

func Save(cfg *Config) error {
	return SaveTo(cfg, "")
}

func SaveTo(cfg *Config, cfgFile string) error {
	v := viper.New()
	v.Set("output_name", cfg.OutputName)
	v.Set("target_fps", cfg.TargetFPS)
	v.Set("log_level", cfg.LogLevel)
	v.Set("log_format", cfg.LogFormat)
	v.Set("log_file", cfg.LogFile)
	v.Set("log_max_size_mb", cfg.LogMaxSizeMB)
	v.Set("log_max_backups", cfg.LogMaxBackups)
	v.Set("output_format", cfg.OutputFormat)

	cfgPath := cfgFile
	if cfgPath == "" {
		cfgPath = filepath.Join(configDir(), "display.yaml")
	}
	if dir := filepath.Dir(cfgPath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}

	if err := v.WriteConfigAs(cfgPath); err != nil {
		return err
	}
	return os.Chmod(cfgPath, 0600)
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "Breeze")
	case "darwin":
		return "/Library/Application Support/Breeze"
	default:
		return "/etc/breeze"
	}
}
