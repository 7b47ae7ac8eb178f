package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 5.0, c.Editing.Hit.EndpointThreshold)
	assert.Equal(t, 15.0, c.Editing.Hit.LineThreshold)
	assert.Equal(t, 8.0, c.Editing.DrawOffset)
	assert.Equal(t, 200*time.Millisecond, c.Display.Debounce())
	assert.Contains(t, c.Labels, "PP3")
}

func TestLoadYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
editing:
  hit:
    line_threshold: 20
logging:
  level: debug
`), 0644))

	c, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 20.0, c.Editing.Hit.LineThreshold)
	assert.Equal(t, 5.0, c.Editing.Hit.EndpointThreshold)
	assert.Equal(t, "debug", c.Logging.Level)
	assert.Equal(t, 200, c.Display.DebounceMS)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
labels = ["A", "B"]

[database]
dsn = "postgres://localhost/goratio"

[display]
debounce_ms = 50
`), 0644))

	c, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, c.Labels)
	assert.Equal(t, "postgres://localhost/goratio", c.Database.DSN)
	assert.Equal(t, 50*time.Millisecond, c.Display.Debounce())
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("viewport:\n  zoom_step: 0\n"), 0644))

	_, err := LoadFromFile(path)
	assert.ErrorContains(t, err, "zoom_step")

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		path := filepath.Join(t.TempDir(), "nested", name)
		c := Default()
		c.Database.DSN = "postgres://db/x"
		c.Export.Delimiter = ";"
		require.NoError(t, c.SaveToFile(path))

		loaded, err := LoadFromFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, c, loaded, name)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"endpoint_threshold": func(c *Config) { c.Editing.Hit.EndpointThreshold = 0 },
		"line_threshold":     func(c *Config) { c.Editing.Hit.LineThreshold = -1 },
		"offsets":            func(c *Config) { c.Editing.DrawOffset = -1 },
		"debounce_ms":        func(c *Config) { c.Display.DebounceMS = -5 },
		"delimiter":          func(c *Config) { c.Export.Delimiter = ",," },
		"logging.level":      func(c *Config) { c.Logging.Level = "loud" },
		"labels cannot":      func(c *Config) { c.Labels = nil },
		"duplicate label":    func(c *Config) { c.Labels = []string{"PP3", "PP3"} },
	}
	for want, mutate := range cases {
		c := Default()
		mutate(c)
		assert.ErrorContains(t, c.Validate(), want)
	}
}
