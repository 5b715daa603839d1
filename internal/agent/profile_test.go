package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveProfileBuiltin(t *testing.T) {
	p, err := ResolveProfile(t.TempDir(), "sql")
	require.NoError(t, err)
	assert.Equal(t, "sql", p.Name)
	assert.Contains(t, p.SystemPrompt, "Chinook")

	p, err = ResolveProfile("", "tutor")
	require.NoError(t, err)
	assert.Contains(t, p.SystemPrompt, "math tutor")

	p, err = ResolveProfile("", "plain")
	require.NoError(t, err)
	assert.Empty(t, p.SystemPrompt)
}

func TestResolveProfileFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "model: gpt-4o\ntemperature: 0.2\nsystem_prompt: |\n  You are a record store clerk.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clerk.yaml"), []byte(yaml), 0o644))

	p, err := ResolveProfile(dir, "clerk")
	require.NoError(t, err)
	assert.Equal(t, "clerk", p.Name)
	assert.Equal(t, "gpt-4o", p.Model)
	require.NotNil(t, p.Temperature)
	assert.Equal(t, 0.2, *p.Temperature)
	assert.Equal(t, "You are a record store clerk.\n", p.SystemPrompt)
}

func TestResolveProfileFileOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sql.yaml"), []byte("system_prompt: custom\n"), 0o644))

	p, err := ResolveProfile(dir, "sql")
	require.NoError(t, err)
	assert.Equal(t, "custom", p.SystemPrompt)
}

func TestResolveProfileErrors(t *testing.T) {
	_, err := ResolveProfile(t.TempDir(), "nobody")
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: [unclosed"), 0o644))
	_, err = ResolveProfile(dir, "bad")
	assert.Error(t, err)
}

func TestResolveProfileZeroTemperature(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "exact.yaml"), []byte("temperature: 0\n"), 0o644))

	p, err := ResolveProfile(dir, "exact")
	require.NoError(t, err)
	require.NotNil(t, p.Temperature)
	assert.Equal(t, 0.0, *p.Temperature)

	p, err = ResolveProfile("", "plain")
	require.NoError(t, err)
	assert.Nil(t, p.Temperature)
}
