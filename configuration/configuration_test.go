package configuration_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/iotaledger/liveevent.go/configuration"
	"github.com/iotaledger/liveevent.go/ierrors"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	filePath := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(filePath, content, 0o600))

	return filePath
}

func TestFetchFlagset(t *testing.T) {
	testFlagSet := flag.NewFlagSet("", flag.ContinueOnError)
	testFlagSet.String("A", "321", "test")
	require.NoError(t, testFlagSet.Set("A", "321"))

	config := configuration.New()
	require.NoError(t, config.LoadFlagSet(testFlagSet))

	require.EqualValues(t, "321", config.String("A"))
}

func TestFetchEnvVars(t *testing.T) {
	testFlagSet := flag.NewFlagSet("", flag.ContinueOnError)
	testFlagSet.String("B", "322", "test")
	require.NoError(t, testFlagSet.Set("B", "322"))

	t.Setenv("TEST_B", "321")
	t.Setenv("TEST_C", "321")

	config := configuration.New()
	require.NoError(t, config.LoadFlagSet(testFlagSet))
	require.NoError(t, config.LoadEnvironmentVars("TEST"))

	require.EqualValues(t, "321", config.String("B"))

	_, exists := config.All()["c"]
	require.False(t, exists, "expected read config value to not exist")
}

func TestFetchFiles(t *testing.T) {
	jsonContent, err := json.MarshalIndent(map[string]int{"C": 321}, "", "    ")
	require.NoError(t, err)

	yamlContent, err := yaml.Marshal(map[string]map[string]int{"Loop": {"QueueSize": 321}})
	require.NoError(t, err)

	tests := []struct {
		name    string
		file    string
		content []byte
		key     string
	}{
		{name: "json", file: "config.json", content: jsonContent, key: "c"},
		{name: "yaml", file: "config.yaml", content: yamlContent, key: "loop.queueSize"},
		{name: "yml", file: "config.yml", content: yamlContent, key: "loop.queuesize"},
		{name: "toml", file: "config.toml", content: []byte("[Demo]\nPostsPerProducer = 321\n"), key: "demo.postsPerProducer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := configuration.New()
			require.NoError(t, config.LoadFile(writeFile(t, tt.file, tt.content)))

			require.True(t, config.Exists(tt.key))
			require.EqualValues(t, 321, config.Int(tt.key))
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	config := configuration.New()

	err := config.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.True(t, ierrors.Is(err, configuration.ErrConfigDoesNotExist))

	err = config.LoadFile(writeFile(t, "config.ini", []byte("a=1")))
	require.True(t, ierrors.Is(err, configuration.ErrUnknownConfigFormat))

	require.Error(t, config.LoadFile(writeFile(t, "broken.json", []byte("{"))))
}

func TestStoreFile(t *testing.T) {
	config := configuration.New()
	require.NoError(t, config.LoadFile(writeFile(t, "config.json", []byte(`{"demo": {"producers": 4, "secret": "hidden"}}`))))

	for _, extension := range []string{".json", ".yaml", ".toml"} {
		storedPath := filepath.Join(t.TempDir(), "stored"+extension)
		require.NoError(t, config.StoreFile(storedPath, "demo.secret"))

		stored := configuration.New()
		require.NoError(t, stored.LoadFile(storedPath))
		require.EqualValues(t, 4, stored.Int("demo.producers"))
		require.False(t, stored.Exists("demo.secret"))
	}

	err := config.StoreFile(filepath.Join(t.TempDir(), "stored.ini"))
	require.True(t, ierrors.Is(err, configuration.ErrUnknownConfigFormat))
}

func TestDump(t *testing.T) {
	config := configuration.New()
	require.NoError(t, config.LoadFile(writeFile(t, "config.json", []byte(`{"logger": {"level": "debug"}, "demo": {"token": "x"}}`))))

	dump, err := config.Dump("demo.token")
	require.NoError(t, err)
	require.Contains(t, dump, `"level": "debug"`)
	require.NotContains(t, dump, "token")
}

func TestMergeParameters(t *testing.T) {
	testFlagSet := flag.NewFlagSet("", flag.ContinueOnError)
	testFlagSet.Int("F", 321, "test")

	t.Setenv("TEST_F", "322")

	config := configuration.New()
	require.NoError(t, config.LoadFile(writeFile(t, "config.json", []byte(`{"E": 321}`))))
	require.NoError(t, config.LoadFlagSet(testFlagSet))
	require.NoError(t, config.LoadEnvironmentVars("TEST"))

	var exists bool

	_, exists = config.All()["e"]
	require.True(t, exists, "expected read config value to exist")

	// all keys should be lower cased
	_, exists = config.All()["E"]
	require.False(t, exists, "expected read config value to not exist")

	_, exists = config.All()["f"]
	require.True(t, exists, "expected read config value to exist")

	_, exists = config.All()["g"]
	require.False(t, exists, "expected read config value to not exist")

	require.EqualValues(t, 321, config.Int("E"))
	require.EqualValues(t, "322", config.String("F"))
	require.EqualValues(t, 322, config.Int("F"))
}

type nestedParameters struct {
	Depth uint `default:"3" usage:"how deep"`
}

type testParameters struct {
	Level     string        `default:"info" usage:"the level"`
	QueueSize int           `name:"queueSize" shorthand:"q" default:"16" usage:"the queue size"`
	Timeout   time.Duration `default:"2s" usage:"the timeout"`
	Flush     bool          `usage:"flush at shutdown"`
	Paths     []string      `default:"stdout,stderr" usage:"the output paths"`
	Nested    nestedParameters
	ignored   int
}

func TestBindParameters(t *testing.T) {
	var params testParameters

	flagSet := configuration.NewUnsortedFlagSet("test", flag.ContinueOnError)
	config := configuration.New()
	config.BindParameters(flagSet, "test", &params)

	require.NotNil(t, flagSet.Lookup("test.level"))
	require.NotNil(t, flagSet.Lookup("test.nested.depth"))
	require.Nil(t, flagSet.Lookup("test.ignored"))
	require.Equal(t, "test.queueSize", flagSet.ShorthandLookup("q").Name)

	// defaults are applied right away
	require.Equal(t, "info", params.Level)
	require.Equal(t, 16, params.QueueSize)
	require.Equal(t, 2*time.Second, params.Timeout)
	require.Equal(t, []string{"stdout", "stderr"}, params.Paths)
	require.EqualValues(t, 3, params.Nested.Depth)

	require.NoError(t, flagSet.Parse([]string{"--test.queueSize=32"}))
	require.Equal(t, 32, params.QueueSize)

	require.NoError(t, config.LoadFile(writeFile(t, "config.json", []byte(`{"test": {"level": "debug", "nested": {"depth": 5}}}`))))
	require.NoError(t, config.LoadFlagSet(flagSet))

	t.Setenv("TEST_TEST_FLUSH", "true")
	require.NoError(t, config.LoadEnvironmentVars("TEST"))

	config.UpdateBoundParameters()

	require.Equal(t, "debug", params.Level)
	require.Equal(t, 32, params.QueueSize)
	require.Equal(t, 2*time.Second, params.Timeout)
	require.True(t, params.Flush)
	require.Equal(t, []string{"stdout", "stderr"}, params.Paths)
	require.EqualValues(t, 5, params.Nested.Depth)
}

func TestBindParametersInvalidDefault(t *testing.T) {
	params := struct {
		Count int `default:"many"`
	}{}

	config := configuration.New()
	require.Panics(t, func() {
		config.BindParameters(flag.NewFlagSet("", flag.ContinueOnError), "test", &params)
	})
}
