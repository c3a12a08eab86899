package config

import (
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialize(t *testing.T) {
	tempDir := t.TempDir()

	cfg, err := Initialize(tempDir, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("Load", func(t *testing.T) {
		loaded, err := Load(tempDir)
		assert.Nil(t, err)
		assert.Equal(t, cfg.TimeoutSeconds, loaded.TimeoutSeconds)
	})

	t.Run("CreateSessionLog", func(t *testing.T) {
		fd, err := cfg.CreateSessionLog("session.log")
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("SessionLogNames", func(t *testing.T) {
		names, err := cfg.SessionLogNames()
		assert.Nil(t, err)
		assert.Contains(t, names, "session.log")
	})

	t.Run("OpenSessionLog", func(t *testing.T) {
		fd, err := cfg.OpenSessionLog("session.log")
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("OpenAppLog", func(t *testing.T) {
		fd, err := cfg.OpenAppLog()
		assert.Nil(t, err)
		fd.Close()
	})
}

func TestInitializeIsIdempotent(t *testing.T) {
	tempDir := t.TempDir()
	logger := log.New(io.Discard, "", 0)

	_, err := Initialize(tempDir, logger)
	assert.Nil(t, err)

	_, err = Initialize(tempDir, logger)
	assert.Nil(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("empty directory falls back to defaults", func(t *testing.T) {
		cfg, err := LoadOrDefault(t.TempDir())
		assert.Nil(t, err)
		assert.Equal(t, 10, cfg.TimeoutSeconds)
	})

	t.Run("initialized directory loads the file", func(t *testing.T) {
		tempDir := t.TempDir()
		_, err := Initialize(tempDir, log.New(io.Discard, "", 0))
		assert.Nil(t, err)

		cfg, err := LoadOrDefault(tempDir)
		assert.Nil(t, err)
		assert.NoError(t, cfg.Validate())
	})
}
