package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestFlagsOverrideDefaults(t *testing.T) {
	cfg := Default()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(fs)

	err := fs.Parse([]string{
		"--image", "/tmp/part.img",
		"--capacity", "32768",
		"--base", "512",
		"--slots", "8",
		"--version", "3",
		"--flush-interval", "30s",
	})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/part.img", cfg.ImagePath)
	assert.Equal(t, 32768, cfg.Capacity)
	assert.Equal(t, uint16(512), cfg.BaseAddr)
	assert.Equal(t, 8, cfg.Slots)
	assert.Equal(t, uint16(3), cfg.Version)
	assert.Equal(t, 30*time.Second, cfg.FlushInterval)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.ImagePath = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Capacity = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Capacity = 1 << 20
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Slots = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.FlushInterval = 0
	assert.Error(t, cfg.Validate())
}
