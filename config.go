package logbridge

import (
	"github.com/Station-Manager/errors"
	"github.com/Station-Manager/types"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config configures a Handler and, through Mask and Output, the
// ZerologBackend it writes to.
type Config struct {
	// Severity is either a single tier or a prefix -> tier mapping.
	Severity SeverityConfig `yaml:"severity" toml:"severity" json:"severity" env:"LOGBRIDGE_SEVERITY" validate:"dive,keys,loggername,endkeys,min=0,max=4"`
	// Level, when set, becomes the output level of the source registry.
	Level      Level  `yaml:"level" toml:"level" json:"level" env:"LOGBRIDGE_LEVEL" validate:"gte=0"`
	Format     string `yaml:"format" toml:"format" json:"format" env:"LOGBRIDGE_FORMAT"`
	DateFormat string `yaml:"datefmt" toml:"datefmt" json:"datefmt" env:"LOGBRIDGE_DATEFMT"`
	Mask       string `yaml:"mask" toml:"mask" json:"mask" env:"LOGBRIDGE_MASK" validate:"omitempty,dbgmask"`

	Output *OutputConfig `yaml:"output" toml:"output" json:"output" validate:"omitempty"`
}

// OutputConfig is the file form of types.LoggingConfig, which only carries
// json tags. Keys are the same in every format.
type OutputConfig struct {
	Level                  string `yaml:"level" toml:"level" json:"level" validate:"oneof=trace debug info warn error fatal panic"`
	SkipFrameCount         int    `yaml:"skip_frame_count" toml:"skip_frame_count" json:"skip_frame_count" validate:"min=0"`
	WithTimestamp          bool   `yaml:"with_timestamp" toml:"with_timestamp" json:"with_timestamp"`
	ConsoleLogging         bool   `yaml:"console_logging" toml:"console_logging" json:"console_logging"`
	FileLogging            bool   `yaml:"file_logging" toml:"file_logging" json:"file_logging"`
	RelLogFileDir          string `yaml:"rel_log_file_dir" toml:"rel_log_file_dir" json:"rel_log_file_dir" validate:"required"`
	LogFileMaxBackups      int    `yaml:"log_file_max_backups" toml:"log_file_max_backups" json:"log_file_max_backups" validate:"min=0"`
	LogFileMaxAgeDays      int    `yaml:"log_file_max_age_days" toml:"log_file_max_age_days" json:"log_file_max_age_days" validate:"min=0"`
	LogFileMaxSizeMB       int    `yaml:"log_file_max_size_mb" toml:"log_file_max_size_mb" json:"log_file_max_size_mb" validate:"omitempty,min=1"`
	LogFileCompress        bool   `yaml:"log_file_compress" toml:"log_file_compress" json:"log_file_compress"`
	ShutdownTimeoutMS      int    `yaml:"shutdown_timeout_ms" toml:"shutdown_timeout_ms" json:"shutdown_timeout_ms" validate:"omitempty,min=10,max=10000"`
	ShutdownTimeoutWarning bool   `yaml:"shutdown_timeout_warning" toml:"shutdown_timeout_warning" json:"shutdown_timeout_warning"`
	ConsoleNoColor         bool   `yaml:"console_no_color" toml:"console_no_color" json:"console_no_color"`
	ConsoleTimeFormat      string `yaml:"console_time_format" toml:"console_time_format" json:"console_time_format"`
}

// LoggingConfig converts o for the backend; nil stays nil.
func (o *OutputConfig) LoggingConfig() *types.LoggingConfig {
	if o == nil {
		return nil
	}
	return &types.LoggingConfig{
		Level:                  o.Level,
		SkipFrameCount:         o.SkipFrameCount,
		WithTimestamp:          o.WithTimestamp,
		ConsoleLogging:         o.ConsoleLogging,
		FileLogging:            o.FileLogging,
		RelLogFileDir:          o.RelLogFileDir,
		LogFileMaxBackups:      o.LogFileMaxBackups,
		LogFileMaxAgeDays:      o.LogFileMaxAgeDays,
		LogFileMaxSizeMB:       o.LogFileMaxSizeMB,
		LogFileCompress:        o.LogFileCompress,
		ShutdownTimeoutMS:      o.ShutdownTimeoutMS,
		ShutdownTimeoutWarning: o.ShutdownTimeoutWarning,
		ConsoleNoColor:         o.ConsoleNoColor,
		ConsoleTimeFormat:      o.ConsoleTimeFormat,
	}
}

// DefaultConfig logs every logger at tier 1 with BasicFormat.
func DefaultConfig() Config {
	return Config{
		Severity:   Scalar(1),
		Format:     BasicFormat,
		DateFormat: DefaultDateFormat,
		Mask:       DefaultMask,
	}
}

// LoadConfig reads path (YAML, TOML, JSON or .env, by extension) over
// DefaultConfig, applies LOGBRIDGE_* environment overrides and validates
// the result.
func LoadConfig(path string) (Config, error) {
	const op errors.Op = "logbridge.LoadConfig"
	cfg := DefaultConfig()
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return Config{}, errors.New(op).Err(err).Msg(errMsgLoadConfig)
	}
	if err := validateConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnvConfig is LoadConfig without a file.
func LoadEnvConfig() (Config, error) {
	const op errors.Op = "logbridge.LoadEnvConfig"
	cfg := DefaultConfig()
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, errors.New(op).Err(err).Msg(errMsgLoadConfig)
	}
	if err := validateConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewBackend returns an uninitialized ZerologBackend for cfg.Output.
func (c Config) NewBackend(workingDir string) *ZerologBackend {
	return &ZerologBackend{
		WorkingDir:    workingDir,
		LoggingConfig: c.Output.LoggingConfig(),
		Mask:          c.Mask,
	}
}
