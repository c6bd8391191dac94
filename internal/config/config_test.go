package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qteleport/internal/teleport"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, teleport.DefaultOptions(), opts)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
layout: [4, 3, 2, 1, 0]
qubits: 7
direction: native
bell: 2
barriers: true
hadamard_basis: true
shots: 64
seed: 99
name: remapped
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []int{4, 3, 2, 1, 0}, cfg.Layout)
	assert.Equal(t, 64, cfg.Shots)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, "remapped", cfg.Name)
	// unset keys keep their defaults
	assert.Equal(t, "qteleport.db", cfg.Database)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, teleport.Options{
		Positions:     []int{4, 3, 2, 1, 0},
		NumQubits:     7,
		Direction:     teleport.Native,
		Bell:          teleport.PhiMinus,
		Barriers:      true,
		HadamardBasis: true,
	}, opts)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown field", "shotz: 10\n"},
		{"zero shots", "shots: 0\n"},
		{"direction", "direction: reversed\n"},
		{"bell", "bell: 4\n"},
		{"malformed", "layout: [1, 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
