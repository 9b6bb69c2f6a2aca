package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withConfigPath(t *testing.T, path string) {
	t.Helper()
	oldGetConfigPath := getConfigPathFunc
	getConfigPathFunc = func() (string, error) {
		return path, nil
	}
	t.Cleanup(func() { getConfigPathFunc = oldGetConfigPath })
}

func TestGetConfigDir(t *testing.T) {
	dir, err := GetConfigDir()
	require.NoError(t, err)
	assert.NotEmpty(t, dir)
	assert.True(t, filepath.IsAbs(dir))
	assert.True(t, strings.HasSuffix(dir, "cognify"))
}

func TestGetConfigPath(t *testing.T) {
	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.NotEmpty(t, path)
	assert.True(t, filepath.IsAbs(path))
	assert.True(t, strings.HasSuffix(path, "config.json"))
}

func TestLoadGlobalConfig_FileNotExists(t *testing.T) {
	tmpDir := t.TempDir()
	withConfigPath(t, filepath.Join(tmpDir, "config.json"))

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestLoadGlobalConfig_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	testConfig := GlobalConfig{APIURL: "http://localhost:9090"}
	data, _ := json.MarshalIndent(testConfig, "", "  ")
	require.NoError(t, os.WriteFile(configPath, data, 0600))
	withConfigPath(t, configPath)

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, "http://localhost:9090", config.APIURL)
}

func TestLoadGlobalConfig_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte("{not json"), 0600))
	withConfigPath(t, configPath)

	config, err := LoadGlobalConfig()
	assert.Error(t, err)
	assert.Nil(t, config)
}

func TestSaveGlobalConfig_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	withConfigPath(t, configPath)

	oldGetConfigDir := getConfigDirFunc
	getConfigDirFunc = func() (string, error) {
		return tmpDir, nil
	}
	t.Cleanup(func() { getConfigDirFunc = oldGetConfigDir })

	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIURL: "http://example.com"}))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, "http://example.com", config.APIURL)
}

func TestSaveGlobalConfig_NilConfig(t *testing.T) {
	err := SaveGlobalConfig(nil)
	assert.Error(t, err)
}
