package runnerconfig

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"lintrunner/internal/linter"
)

const (
	BinName   = "lintrunner"
	envPrefix = "LINTRUNNER"
	// config file looked up in the working directory when --config is not given
	defaultConfigName = ".lintrunner"
)

// Version is set at build time with -ldflags "-X lintrunner/config/runner.Version=...".
var Version = "0.1.0"

var (
	// ErrVersion means the version was requested; it is not a failure.
	ErrVersion = errors.New("version requested")
	// ErrInvalidArgs wraps every flag, environment or config file problem.
	ErrInvalidArgs = errors.New("invalid arguments")
)

// settingKeys are the names read from flags, environment and config file.
var settingKeys = []string{
	"changed-only", "changed-ref", "dry-run", "list", "debug", "no-shell",
	"source-dirs", "ignored-dirs", "linters",
}

var (
	DefaultSourceDirs  = []string{"app", "config", "db", "lib", "script", "test"}
	DefaultIgnoredDirs = []string{"test/fixtures"}
)

type Config struct {
	Stdout  io.Writer
	BinName string
	Version string

	SourceDirs  []string
	IgnoredDirs []string
	Linters     []linter.Linter

	ChangedOnly bool
	ChangedRef  string
	DryRun      bool
	List        bool
	Debug       bool
	NoShell     bool

	ConfigFile string

	flags *flag.FlagSet
}

// New returns a Config holding the defaults. A nil stdout means os.Stdout.
func New(stdout io.Writer) *Config {
	if stdout == nil {
		stdout = os.Stdout
	}
	cfg := &Config{
		Stdout:      stdout,
		BinName:     BinName,
		Version:     Version,
		SourceDirs:  append([]string(nil), DefaultSourceDirs...),
		IgnoredDirs: append([]string(nil), DefaultIgnoredDirs...),
		Linters:     append([]linter.Linter(nil), linter.Defaults...),
	}
	cfg.flags = newFlagSet()
	return cfg
}

func newFlagSet() *flag.FlagSet {
	flags := flag.NewFlagSet(BinName, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.Usage = func() {}
	flags.SortFlags = false

	flags.BoolP("changed-only", "c", false, "only run source files with changes")
	flags.StringP("changed-ref", "r", "", "git reference to compare against, use with -c")
	flags.Bool("dry-run", false, "output each linter command to stdout without executing")
	flags.BoolP("list", "l", false, "list source files on stdout")
	flags.BoolP("debug", "d", false, "run in debug mode")
	flags.Bool("no-shell", false, "run linters directly instead of through the shell")
	flags.String("config", "", "config file (default .lintrunner.{yml,json,toml} if present)")
	flags.Bool("version", false, "show the version")
	flags.BoolP("help", "h", false, "show this help")
	return flags
}

// GetConfig parses args and layers, from lowest to highest precedence, the
// defaults, the config file, LINTRUNNER_* environment variables and the
// flags. It returns the positional arguments.
func (cfg *Config) GetConfig(args []string, workDir string, logger *zap.SugaredLogger) ([]string, error) {
	if err := cfg.flags.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	if help, _ := cfg.flags.GetBool("help"); help {
		return nil, flag.ErrHelp
	}
	if version, _ := cfg.flags.GetBool("version"); version {
		return nil, ErrVersion
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	err := v.BindPFlags(cfg.flags)
	if err != nil {
		logger.Warnw("unable to bind flags", "error", err)
	}
	v.AutomaticEnv()

	if err := readConfigFile(v, workDir, logger); err != nil {
		return nil, err
	}

	// Raw values only: Apply does the coercion and reports what it cannot coerce.
	settings := make(map[string]any, len(settingKeys))
	for _, key := range settingKeys {
		if v.IsSet(key) {
			settings[key] = v.Get(key)
		}
	}
	if err := cfg.Apply(settings); err != nil {
		return nil, err
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	return cfg.flags.Args(), nil
}

func readConfigFile(v *viper.Viper, workDir string, logger *zap.SugaredLogger) error {
	if file := v.GetString("config"); file != "" {
		if !filepath.IsAbs(file) {
			file = filepath.Join(workDir, file)
		}
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			logger.Warnw("unable to read config file", "path", file, "error", err)
			return fmt.Errorf("%w: config file %s: %v", ErrInvalidArgs, file, err)
		}
		return nil
	}

	v.SetConfigName(defaultConfigName)
	v.AddConfigPath(workDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		logger.Warnw("unable to read config file", "name", defaultConfigName, "error", err)
		return fmt.Errorf("%w: config file: %v", ErrInvalidArgs, err)
	}
	return nil
}

// Apply sets every recognised setting. Unknown names and nil values are
// skipped; names may use dashes or underscores.
func (cfg *Config) Apply(settings map[string]any) error {
	for name, value := range settings {
		if value == nil {
			continue
		}
		var err error
		switch strings.ReplaceAll(name, "-", "_") {
		case "changed_only":
			cfg.ChangedOnly, err = cast.ToBoolE(value)
		case "changed_ref":
			cfg.ChangedRef, err = cast.ToStringE(value)
		case "dry_run":
			cfg.DryRun, err = cast.ToBoolE(value)
		case "list":
			cfg.List, err = cast.ToBoolE(value)
		case "debug":
			cfg.Debug, err = cast.ToBoolE(value)
		case "no_shell":
			cfg.NoShell, err = cast.ToBoolE(value)
		case "source_dirs":
			cfg.SourceDirs, err = cast.ToStringSliceE(value)
		case "ignored_dirs":
			cfg.IgnoredDirs, err = cast.ToStringSliceE(value)
		case "linters":
			cfg.Linters, err = toLinters(value)
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidArgs, name, err)
		}
	}
	return nil
}

func toLinters(value any) ([]linter.Linter, error) {
	var linters []linter.Linter
	switch v := value.(type) {
	case []linter.Linter:
		linters = append(linters, v...)
	default:
		if err := mapstructure.Decode(value, &linters); err != nil {
			return nil, err
		}
	}
	for _, l := range linters {
		if err := l.Validate(); err != nil {
			return nil, err
		}
	}
	return linters, nil
}

// HelpMsg renders the usage line and every flag.
func (cfg *Config) HelpMsg() string {
	return "Usage: " + cfg.BinName + " [options] [FILES]\n\n" +
		"Options:\n" +
		cfg.flags.FlagUsages()
}
