package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/bikeledger/internal/paths"
	"github.com/mesh-intelligence/bikeledger/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyDataDir     = "data_dir"
	cfgKeyDBFile      = "db_file"
	cfgKeyCatalogFile = "catalog_file"
	cfgKeyLogLevel    = "log_level"
	cfgKeyListen      = "listen"

	envPrefix = "BIKELEDGER"
)

// errConfig marks configuration failures for exit code mapping.
var errConfig = errors.New("configuration error")

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# bikeledger configuration
# Every key may also be set through a BIKELEDGER_<KEY> environment variable.

# Data directory (optional; overridable by --data-dir)
# data_dir:

# Database file name inside the data directory
db_file: bikes.db

# Catalog replacing the built-in model list; relative to this directory
# catalog_file: catalog.yaml

# Log level: debug, info, warn, error
log_level: warn

# Address for "bikeledger serve"
listen: 127.0.0.1:8080
`

// loadConfig reads config.yaml from configDir using Viper, creating the
// directory and a default file on first run. A missing config.yaml is not
// an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyDBFile, types.DefaultDBFile)
	v.SetDefault(cfgKeyLogLevel, types.DefaultLogLevel)
	v.SetDefault(cfgKeyListen, types.DefaultListen)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	// data_dir is left to paths.ResolveDataDir, whose precedence puts the
	// config file ahead of the environment.
	v.SetEnvPrefix(envPrefix)
	for _, key := range []string{cfgKeyDBFile, cfgKeyCatalogFile, cfgKeyLogLevel, cfgKeyListen} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile writes defaultConfigYAML unless config.yaml exists.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// resolveConfig merges flags, environment and config.yaml into a Config.
func resolveConfig(cmd *cobra.Command) (types.Config, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return types.Config{}, fmt.Errorf("%w: resolve config dir: %w", errConfig, err)
	}

	v, err := loadConfig(configDir)
	if err != nil {
		return types.Config{}, fmt.Errorf("%w: %w", errConfig, err)
	}

	if f := cmd.Flags().Lookup("log-level"); f != nil {
		if err := v.BindPFlag(cfgKeyLogLevel, f); err != nil {
			return types.Config{}, fmt.Errorf("%w: bind log-level: %w", errConfig, err)
		}
	}
	if f := cmd.Flags().Lookup("listen"); f != nil {
		if err := v.BindPFlag(cfgKeyListen, f); err != nil {
			return types.Config{}, fmt.Errorf("%w: bind listen: %w", errConfig, err)
		}
	}

	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("%w: resolve data dir: %w", errConfig, err)
	}

	cfg := types.Config{
		DataDir:     dataDir,
		DBFile:      v.GetString(cfgKeyDBFile),
		CatalogFile: paths.ResolveRelative(configDir, v.GetString(cfgKeyCatalogFile)),
		LogLevel:    v.GetString(cfgKeyLogLevel),
		Listen:      v.GetString(cfgKeyListen),
		Reset:       flags.reset,
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("%w: %w", errConfig, err)
	}
	return cfg, nil
}
