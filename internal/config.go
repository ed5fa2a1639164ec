package internal

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/tuannm99/sqlgrade/internal/validate"
)

type SqlGradeConfig struct {
	AppName string `mapstructure:"app_name"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	Server struct {
		Addr  string `mapstructure:"addr"`
		Debug bool   `mapstructure:"debug"`
	} `mapstructure:"server"`

	Assignments struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"assignments"`

	Validation struct {
		NumericTolerance float64 `mapstructure:"numeric_tolerance"`
		FloatPrecision   int32   `mapstructure:"float_precision"`
		Matching         string  `mapstructure:"matching"`

		validate.AliasTable `mapstructure:",squash"`
	} `mapstructure:"validation"`

	Grader struct {
		MaxRows  int  `mapstructure:"max_rows"`
		Parallel bool `mapstructure:"parallel"`
	} `mapstructure:"grader"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "sqlgrade")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.addr", "127.0.0.1:8866")
	v.SetDefault("assignments.dir", "./assignments")
	v.SetDefault("validation.numeric_tolerance", validate.DefaultTolerance)
	v.SetDefault("validation.float_precision", validate.DefaultPrecision)
	v.SetDefault("validation.matching", "greedy")
	v.SetDefault("validation.aggregate_tokens", validate.DefaultAliases.Tokens)
	v.SetDefault("validation.alias_groups", validate.DefaultAliases.Groups)
	v.SetDefault("grader.max_rows", 1000)
	v.SetDefault("grader.parallel", false)
}

// LoadConfig reads a YAML config file. An empty path yields the defaults.
// SQLGRADE_* environment variables override file values (SQLGRADE_SERVER_ADDR).
func LoadConfig(path string) (*SqlGradeConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("sqlgrade")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg SqlGradeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if _, err := cfg.ValidatorOptions(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ValidatorOptions maps the validation section onto validate.Options.
func (c *SqlGradeConfig) ValidatorOptions() (validate.Options, error) {
	mode, ok := validate.ParseMatchMode(strings.ToLower(c.Validation.Matching))
	if !ok {
		return validate.Options{}, fmt.Errorf("config: unknown matching mode %q", c.Validation.Matching)
	}
	if c.Validation.NumericTolerance < 0 {
		return validate.Options{}, fmt.Errorf("config: numeric_tolerance must be >= 0, got %v", c.Validation.NumericTolerance)
	}

	return validate.Options{
		Aliases:   c.Validation.AliasTable,
		Tolerance: c.Validation.NumericTolerance,
		Precision: c.Validation.FloatPrecision,
		Matching:  mode,
	}, nil
}
