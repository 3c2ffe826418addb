package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Host  string `json:"host"`
	Port  int    `json:"port"`
	Token string `json:"token"`
}

func writeConfig(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestLoadLayersLocalOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "service.json5")
	writeConfig(t, path, `{host: "example.com", port: 8080}`)
	writeConfig(t, filepath.Join(dir, "service.local.json5"), `{port: 9090, token: "secret"}`)

	config, err := Load[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, "example.com", config.Host)
	require.Equal(t, 9090, config.Port)
	require.Equal(t, "secret", config.Token)
}

func TestLoadLocalOnly(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, "service.local.json5"), `{host: "local"}`)

	config, err := Load[testConfig](filepath.Join(dir, "service.json5"))
	require.NoError(t, err)
	require.Equal(t, "local", config.Host)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load[testConfig](filepath.Join(t.TempDir(), "absent.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRequireEnv(t *testing.T) {
	t.Setenv("CONFIGUTIL_TEST_KEY", "value")
	value, err := RequireEnv("CONFIGUTIL_TEST_KEY")
	require.NoError(t, err)
	require.Equal(t, "value", value)

	t.Setenv("CONFIGUTIL_TEST_KEY", "")
	_, err = RequireEnv("CONFIGUTIL_TEST_KEY")
	require.Error(t, err)
	require.Contains(t, err.Error(), "CONFIGUTIL_TEST_KEY")
}

func TestEnvBool(t *testing.T) {
	t.Setenv("CONFIGUTIL_TEST_BOOL", "")
	require.True(t, EnvBool("CONFIGUTIL_TEST_BOOL", true))
	require.False(t, EnvBool("CONFIGUTIL_TEST_BOOL", false))

	for _, truthy := range []string{"true", "True", "t", "1"} {
		t.Setenv("CONFIGUTIL_TEST_BOOL", truthy)
		require.True(t, EnvBool("CONFIGUTIL_TEST_BOOL", false), truthy)
	}

	t.Setenv("CONFIGUTIL_TEST_BOOL", "no")
	require.False(t, EnvBool("CONFIGUTIL_TEST_BOOL", true))
}
