package configuration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	flag "github.com/spf13/pflag"

	"github.com/iotaledger/liveevent.go/ierrors"
)

var (
	// ErrConfigDoesNotExist is returned if the config file is unknown.
	ErrConfigDoesNotExist = ierrors.New("config does not exist")
	// ErrUnknownConfigFormat is returned if the format of the config file is unknown.
	ErrUnknownConfigFormat = ierrors.New("unknown config file format")
)

// Configuration holds config parameters from several sources (file, env vars, flags).
type Configuration struct {
	config *koanf.Koanf
	// boundParameters keeps track of all parameters that were bound using the BindParameters function.
	boundParameters map[string]*BoundParameter
}

// New returns a new configuration.
func New() *Configuration {
	return &Configuration{
		config:          koanf.New("."),
		boundParameters: make(map[string]*BoundParameter),
	}
}

// Dump returns the loaded configuration as indented JSON. The settings in ignoreSettings are omitted.
func (c *Configuration) Dump(ignoreSettings ...string) (string, error) {
	settings := withoutSettings(c.config.Raw(), ignoreSettings)

	dump, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return "", ierrors.Wrap(err, "unable to marshal config")
	}

	return string(dump), nil
}

// LoadFile loads parameters from a JSON, YAML or TOML file and merges them into the loaded config.
// Existing keys will be overwritten.
func (c *Configuration) LoadFile(filePath string) error {
	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return ierrors.Wrapf(ErrConfigDoesNotExist, "unable to load %s", filePath)
		}

		return ierrors.Wrapf(err, "unable to load %s", filePath)
	}

	parser, err := parserForFile(filePath, false)
	if err != nil {
		return err
	}

	if err := c.config.Load(file.Provider(filePath), parser); err != nil {
		return ierrors.Wrapf(err, "unable to load %s", filePath)
	}

	return nil
}

// StoreFile stores the current config to a JSON, YAML or TOML file.
// ignoreSettingsAtStore will not be stored to the file.
func (c *Configuration) StoreFile(filePath string, ignoreSettingsAtStore ...string) error {
	parser, err := parserForFile(filePath, true)
	if err != nil {
		return err
	}

	data, err := parser.Marshal(withoutSettings(c.config.Raw(), ignoreSettingsAtStore))
	if err != nil {
		return ierrors.Wrap(err, "unable to marshal config file")
	}

	if err := os.WriteFile(filePath, data, 0o600); err != nil {
		return ierrors.Wrap(err, "unable to save config file")
	}

	return nil
}

// LoadFlagSet loads parameters from a FlagSet (spf13/pflag lib) including
// default values and merges them into the loaded config.
// Existing keys will only be overwritten, if they were set via command line.
// If not given via command line, default values will only be used if they did not exist beforehand.
func (c *Configuration) LoadFlagSet(flagSet *flag.FlagSet) error {
	return c.config.Load(lowerPosflagProvider(flagSet, ".", c.config), nil)
}

// LoadEnvironmentVars loads parameters from env vars and merges them into the loaded config.
// The prefix is used to filter the env vars.
// Only existing keys will be overwritten, all other keys are ignored.
func (c *Configuration) LoadEnvironmentVars(prefix string) error {
	if prefix != "" {
		prefix += "_"
	}

	return c.config.Load(env.Provider(prefix, ".", func(s string) string {
		mapKey := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, prefix)), "_", ".")
		if !c.config.Exists(mapKey) {
			// only accept values from env vars that already exist in the config
			return ""
		}

		return mapKey
	}), nil)
}

// Koanf returns the underlying Koanf instance.
func (c *Configuration) Koanf() *koanf.Koanf {
	return c.config
}

// Load takes a Provider that either provides a parsed config map[string]interface{}
// in which case pa (Parser) can be nil, or raw bytes to be parsed, where a Parser
// can be provided to parse.
func (c *Configuration) Load(p koanf.Provider, pa koanf.Parser, opts ...koanf.Option) error {
	return c.config.Load(p, pa, opts...)
}

// All returns the flattened config map.
func (c *Configuration) All() map[string]interface{} {
	return c.config.All()
}

// Exists returns true if the key exists in the config.
func (c *Configuration) Exists(key string) bool {
	return c.config.Exists(strings.ToLower(key))
}

func (c *Configuration) String(key string) string {
	return c.config.String(strings.ToLower(key))
}

func (c *Configuration) Strings(key string) []string {
	return c.config.Strings(strings.ToLower(key))
}

func (c *Configuration) Bool(key string) bool {
	return c.config.Bool(strings.ToLower(key))
}

func (c *Configuration) Int(key string) int {
	return c.config.Int(strings.ToLower(key))
}

func (c *Configuration) Int64(key string) int64 {
	return c.config.Int64(strings.ToLower(key))
}

func (c *Configuration) Float64(key string) float64 {
	return c.config.Float64(strings.ToLower(key))
}

func (c *Configuration) Duration(key string) time.Duration {
	return c.config.Duration(strings.ToLower(key))
}

func parserForFile(filePath string, indent bool) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		if indent {
			return &JSONLowerParser{indent: "  "}, nil
		}

		return &JSONLowerParser{}, nil
	case ".yaml", ".yml":
		return &YAMLLowerParser{}, nil
	case ".toml":
		return &TOMLLowerParser{}, nil
	default:
		return nil, ierrors.Wrapf(ErrUnknownConfigFormat, "unsupported extension of %s", filePath)
	}
}

// withoutSettings removes the given (dot separated) settings from the nested settings map.
func withoutSettings(settings map[string]interface{}, ignoredSettings []string) map[string]interface{} {
	for _, ignoredSetting := range ignoredSettings {
		parameter := settings
		ignoredSettingSplitted := strings.Split(strings.ToLower(ignoredSetting), ".")
		for lvl, parameterName := range ignoredSettingSplitted {
			if lvl == len(ignoredSettingSplitted)-1 {
				delete(parameter, parameterName)

				continue
			}

			par, exists := parameter[parameterName]
			if !exists {
				// parameter not found in settings
				break
			}

			nested, isMap := par.(map[string]interface{})
			if !isMap {
				break
			}
			parameter = nested
		}
	}

	return settings
}
