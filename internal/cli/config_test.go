package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigWithDefaults(t *testing.T) {
	c := Config{}.withDefaults()
	assert.Equal(t, ".", c.SourceDir)
	assert.Equal(t, ".", c.OutputDir)
	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 3, c.ConfigRetention)
	assert.Equal(t, DefaultDebugAddr, c.DebugAddr)
}

func TestConfigWithDefaultsKeepsExplicitValues(t *testing.T) {
	c := Config{
		SourceDir:       "/src",
		Environment:     "production",
		ConfigRetention: 10,
		DebugAddr:       "127.0.0.1:9000",
	}.withDefaults()
	assert.Equal(t, "/src", c.SourceDir)
	assert.Equal(t, "/src", c.OutputDir)
	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, 10, c.ConfigRetention)
	assert.Equal(t, "127.0.0.1:9000", c.DebugAddr)
}
