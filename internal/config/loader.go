package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/automatizamg/seilist/internal/model"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".seilist.yaml"

// DefaultEnvFile is the dotenv file read when none is given explicitly.
const DefaultEnvFile = ".env"

// Environment variable names.
const (
	EnvUser              = "SEI_USER"
	EnvPassword          = "SEI_PASS"
	EnvOrgCode           = "SEI_ORGAO"
	EnvTargetUnit        = "SEI_UNIDADE"
	EnvDebug             = "SEI_DEBUG"
	EnvSaveDebugHTML     = "SEI_SAVE_DEBUG_HTML"
	EnvDataDir           = "SEI_DATA_DIR"
	EnvBaseURL           = "SEI_BASE_URL"
	EnvLoginPath         = "SEI_LOGIN_PATH"
	EnvOutputPath        = "SEI_SAIDA"
	EnvTimeout           = "SEI_TIMEOUT"
	EnvRequestDelay      = "SEI_REQUEST_DELAY"
	EnvPaginationTimeout = "SEI_PAGINATION_TIMEOUT"
)

// LookupFunc reads one variable. os.LookupEnv is the default.
type LookupFunc func(key string) (string, bool)

type loader struct {
	lookup          LookupFunc
	configPath      string
	envFile         string
	envFileExplicit bool
	overrides       []func(*Settings)
	logger          *slog.Logger
}

// LoadOption configures Load.
type LoadOption func(*loader)

// WithLookup replaces the process environment as variable source.
func WithLookup(fn LookupFunc) LoadOption {
	return func(l *loader) {
		l.lookup = fn
	}
}

// WithConfigFile sets an explicit configuration file. A missing explicit
// file is an error; a missing default file is not.
func WithConfigFile(path string) LoadOption {
	return func(l *loader) {
		l.configPath = path
	}
}

// WithEnvFile sets an explicit dotenv file. Empty disables dotenv loading.
func WithEnvFile(path string) LoadOption {
	return func(l *loader) {
		l.envFile = path
		l.envFileExplicit = true
	}
}

// WithOverride applies fn after every other layer, before validation.
// The CLI uses it for flags.
func WithOverride(fn func(*Settings)) LoadOption {
	return func(l *loader) {
		l.overrides = append(l.overrides, fn)
	}
}

// WithLogger sets the logger used to report which sources were read.
func WithLogger(logger *slog.Logger) LoadOption {
	return func(l *loader) {
		l.logger = logger
	}
}

// Load builds validated Settings and the account Credentials.
// Any failure is returned as a model config error.
func Load(opts ...LoadOption) (*Settings, Credentials, error) {
	l := &loader{
		lookup:  os.LookupEnv,
		envFile: DefaultEnvFile,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}

	settings := Default()

	if path := FindConfigFile(l.configPath); path != "" {
		file, err := LoadConfigFile(path)
		if err != nil {
			return nil, Credentials{}, model.NewConfigError("read "+path, err)
		}
		overlay := file.Settings()
		if err := mergo.Merge(&settings, overlay, mergo.WithOverride); err != nil {
			return nil, Credentials{}, model.NewConfigError("merge "+path, err)
		}
		l.logger.Debug("merged configuration file", "path", path)
	} else if l.configPath != "" {
		return nil, Credentials{}, model.NewConfigError(l.configPath, ErrConfigNotFound)
	}

	lookup, err := l.withDotenv()
	if err != nil {
		return nil, Credentials{}, err
	}

	creds, err := applyEnv(&settings, lookup)
	if err != nil {
		return nil, Credentials{}, err
	}

	for _, fn := range l.overrides {
		fn(&settings)
	}

	var missing []string
	if strings.TrimSpace(creds.Username) == "" {
		missing = append(missing, EnvUser)
	}
	if creds.Password == "" {
		missing = append(missing, EnvPassword)
	}
	if strings.TrimSpace(settings.OrgCode) == "" {
		missing = append(missing, EnvOrgCode)
	}
	if strings.TrimSpace(settings.TargetUnit) == "" {
		missing = append(missing, EnvTargetUnit)
	}
	if len(missing) > 0 {
		return nil, Credentials{}, model.NewConfigError(
			"missing required settings: "+strings.Join(missing, ", "),
			model.ErrMissingSetting,
		)
	}

	if err := settings.Validate(); err != nil {
		return nil, Credentials{}, err
	}
	return &settings, creds, nil
}

// withDotenv layers the dotenv file under the primary lookup: real
// variables win over the file.
func (l *loader) withDotenv() (LookupFunc, error) {
	if l.envFile == "" {
		return l.lookup, nil
	}
	values, err := godotenv.Read(l.envFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !l.envFileExplicit {
			return l.lookup, nil
		}
		return nil, model.NewConfigError("read "+l.envFile, err)
	}
	l.logger.Debug("loaded dotenv file", "path", l.envFile, "variables", len(values))

	primary := l.lookup
	return func(key string) (string, bool) {
		if v, ok := primary(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}, nil
}

// applyEnv overlays SEI_* variables on s and returns the credentials.
func applyEnv(s *Settings, lookup LookupFunc) (Credentials, error) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	var creds Credentials
	str(EnvUser, &creds.Username)
	if v, ok := lookup(EnvPassword); ok {
		creds.Password = v
	}

	str(EnvOrgCode, &s.OrgCode)
	str(EnvTargetUnit, &s.TargetUnit)
	str(EnvDataDir, &s.DataDir)
	str(EnvBaseURL, &s.BaseURL)
	str(EnvLoginPath, &s.LoginPath)
	str(EnvOutputPath, &s.OutputPath)

	bools := []struct {
		key string
		dst *bool
	}{
		{EnvDebug, &s.Debug},
		{EnvSaveDebugHTML, &s.SaveDebugHTML},
	}
	for _, b := range bools {
		v, ok := lookup(b.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		parsed, err := ParseBool(v)
		if err != nil {
			return Credentials{}, model.NewConfigError(b.key, err)
		}
		*b.dst = parsed
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{EnvTimeout, &s.Timeout},
		{EnvPaginationTimeout, &s.PaginationTimeout},
		{EnvRequestDelay, &s.RequestDelay},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		parsed, err := ParseDuration(v)
		if err != nil {
			return Credentials{}, model.NewConfigError(d.key, err)
		}
		*d.dst = parsed
	}

	return creds, nil
}

// ParseBool parses the truthy and falsy words accepted by SEI_* flags,
// in English and Portuguese.
func ParseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "sim":
		return true, nil
	case "0", "false", "f", "no", "n", "nao", "não":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidBool, v)
	}
}

// ParseDuration accepts Go duration syntax or a plain number of seconds.
func ParseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidSetting, v)
	}
	return d, nil
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .seilist.yaml in the current directory
// 3. Look for .seilist.yaml in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}
