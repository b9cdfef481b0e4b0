package types

import "errors"

// Config holds the parameters the CLI resolves before opening the store.
type Config struct {
	DataDir     string `json:"data_dir" yaml:"data_dir"`
	DBFile      string `json:"db_file" yaml:"db_file"`
	CatalogFile string `json:"catalog_file,omitempty" yaml:"catalog_file,omitempty"`
	LogLevel    string `json:"log_level" yaml:"log_level"`
	Listen      string `json:"listen" yaml:"listen"`

	// Reset removes the database file before opening it. It is only ever
	// set from the --reset flag.
	Reset bool `json:"-" yaml:"-"`
}

// Defaults applied when a key is absent from flags, environment and config.yaml.
const (
	DefaultDBFile   = "bikes.db"
	DefaultLogLevel = "warn"
	DefaultListen   = "127.0.0.1:8080"
)

// Config validation errors.
var (
	ErrDBFileEmpty     = errors.New("db file must not be empty")
	ErrDBFileNotBase   = errors.New("db file must be a file name, not a path")
	ErrLogLevelUnknown = errors.New("unknown log level")
)

// knownLogLevels lists the levels Validate accepts.
var knownLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the Config is well-formed. An empty LogLevel is
// accepted and treated as DefaultLogLevel by the logger.
func (c Config) Validate() error {
	if c.DBFile == "" {
		return ErrDBFileEmpty
	}
	for _, r := range c.DBFile {
		if r == '/' || r == '\\' {
			return ErrDBFileNotBase
		}
	}
	if c.LogLevel != "" && !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	return nil
}
