package main

import (
	"flag"
	"os"

	"github.com/pelletier/go-toml"
)

// Config holds the engine's process-level configuration inputs: the
// upstream event source address, the topic/partition it publishes shares
// on, and the HTTP bind address. Grounded on the teacher's config.go
// (defaults-plus-file-overlay shape), trimmed to the handful of fields
// this domain actually needs.
type Config struct {
	ShareSourceAddr string `toml:"share_source_addr"`
	ShareLogTopic   string `toml:"share_log_topic"`
	SharePartition  int32  `toml:"share_partition"`
	HTTPBindAddr    string `toml:"http_bind_addr"`

	LogPoolFile  string `toml:"log_pool_file"`
	LogErrorFile string `toml:"log_error_file"`
	LogDebugFile string `toml:"log_debug_file"`
	LogStdout    bool   `toml:"log_stdout"`
	LogDebug     bool   `toml:"log_debug"`
}

func defaultConfig() Config {
	return Config{
		ShareSourceAddr: "tcp://127.0.0.1:8477",
		ShareLogTopic:   "shares",
		SharePartition:  0,
		HTTPBindAddr:    ":8080",
		LogStdout:       true,
	}
}

// applyLoggingConfig points the package logger at the files this Config
// names and sets its level, mirroring the teacher's config-driven logger
// setup in its own main().
func applyLoggingConfig(cfg Config) {
	configureFileLogging(cfg.LogPoolFile, cfg.LogErrorFile, cfg.LogDebugFile, cfg.LogStdout)
	if cfg.LogDebug {
		setLogLevel(logLevelDebug)
	} else {
		setLogLevel(logLevelInfo)
	}
}

func defaultConfigPath() string {
	return "sharestats.toml"
}

// loadConfigFile decodes a TOML config file into a Config layered on top of
// defaultConfig. A missing file is not an error: the caller gets the
// defaults, matching the teacher's "no config file yet" startup path.
func loadConfigFile(path string) (Config, bool, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, false, nil
		}
		return cfg, false, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, false, err
	}
	return cfg, true, nil
}

// loadConfig resolves the config path (flag override, else the default
// location) and loads it, falling fatally to process exit on a malformed
// file the same way the teacher's loadConfig does.
func loadConfig(configPath string) Config {
	if configPath == "" {
		configPath = defaultConfigPath()
	}
	cfg, ok, err := loadConfigFile(configPath)
	if err != nil {
		fatal("config file", err, "path", configPath)
	}
	if ok {
		logger.Info("loaded config file", "path", configPath)
	} else {
		logger.Info("config file not found, using defaults", "path", configPath)
	}
	return cfg
}

// applyFlagOverrides layers command-line overrides on top of a loaded
// Config, matching the teacher's flag-overrides-config precedence. Only
// flags explicitly set on the command line override the config value.
func applyFlagOverrides(cfg Config, fs *flag.FlagSet) Config {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			cfg.ShareSourceAddr = f.Value.String()
		case "topic":
			cfg.ShareLogTopic = f.Value.String()
		case "http":
			cfg.HTTPBindAddr = f.Value.String()
		}
	})
	return cfg
}
