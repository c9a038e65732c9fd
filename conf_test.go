package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfDefaults(t *testing.T) {
	c, err := LoadConf("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultZoom, c.Tm.Zoom)
	assert.Equal(t, "zoom-5", c.Output.Directory)
	assert.Equal(t, DefaultTileURL, c.Tm.URL)
	assert.Equal(t, DefaultUserAgent, c.Tm.UserAgent)
	assert.Equal(t, DefaultReferer, c.Tm.Referer)
	assert.Equal(t, 1, c.Task.Workers)
	assert.Equal(t, 30*time.Second, c.Task.Timeout)
	assert.True(t, c.Output.OutputTerminal)
}

func TestLoadConfFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[output]
directory = "tiles"
outputTerminal = false

[task]
workers = 4
timeout = "5s"

[tm]
zoom = 3
url = "http://localhost/{z}/{x}/{y}.png"
userAgent = "test agent"
`), 0o644))

	c, err := LoadConf(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Tm.Zoom)
	assert.Equal(t, "tiles", c.Output.Directory)
	assert.False(t, c.Output.OutputTerminal)
	assert.Equal(t, 4, c.Task.Workers)
	assert.Equal(t, 5*time.Second, c.Task.Timeout)
	assert.Equal(t, "http://localhost/{z}/{x}/{y}.png", c.Tm.URL)
	assert.Equal(t, "test agent", c.Tm.UserAgent)
	assert.Equal(t, DefaultReferer, c.Tm.Referer)
}

func TestLoadConfMissingFile(t *testing.T) {
	_, err := LoadConf(filepath.Join(t.TempDir(), "nope.toml"), nil)
	assert.Error(t, err)
}

func TestLoadConfEnv(t *testing.T) {
	t.Setenv("TILESTITCH_TM_ZOOM", "2")
	t.Setenv("TILESTITCH_TASK_WORKERS", "3")

	c, err := LoadConf("", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Tm.Zoom)
	assert.Equal(t, 3, c.Task.Workers)
	assert.Equal(t, "zoom-2", c.Output.Directory)
}

func TestLoadConfFlagsOverrideEnv(t *testing.T) {
	t.Setenv("TILESTITCH_TM_ZOOM", "2")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("zoom", DefaultZoom, "")
	flags.String("output", "", "")
	flags.Int("workers", 1, "")
	require.NoError(t, flags.Parse([]string{"--zoom", "4", "--output", "out"}))

	c, err := LoadConf("", flags)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Tm.Zoom)
	assert.Equal(t, "out", c.Output.Directory)
	assert.Equal(t, 1, c.Task.Workers)
}

func TestLoadConfRejectsNegativeZoom(t *testing.T) {
	t.Setenv("TILESTITCH_TM_ZOOM", "-1")
	_, err := LoadConf("", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestConfValidate(t *testing.T) {
	c := testConf("out", 1)
	require.NoError(t, c.Validate())

	c.Task.Timedelay = -1
	assert.ErrorIs(t, c.Validate(), ErrInvalidInput)

	c = testConf("out", 1)
	c.Tm.URL = ""
	assert.ErrorIs(t, c.Validate(), ErrInvalidInput)
}

func TestConfTileMap(t *testing.T) {
	c, err := LoadConf("", nil)
	require.NoError(t, err)
	assert.Equal(t, TileMap{
		URL:       DefaultTileURL,
		UserAgent: DefaultUserAgent,
		Referer:   DefaultReferer,
	}, c.TileMap())

	task, err := NewTask(c, &stubFetcher{size: 1})
	require.NoError(t, err)
	assert.Equal(t, "streetview-coverage", task.Name)
}
