// Copyright (c) 2025 Adam Chubbuck <archubbuck@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestConfig points OPSCTL_CFG at a testdata file and resets the
// package-level Config.
func setupTestConfig(t *testing.T, testdataFile string) {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join("testdata", testdataFile))
	require.NoError(t, err)

	t.Setenv("OPSCTL_CFG", absPath)
	Config = Type{}
	t.Cleanup(func() { Config = Type{} })
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		testFile  string
		checkFunc func(*testing.T, Type)
	}{
		{
			name:     "simple string values",
			testFile: "simple.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source)
				assert.Equal(t, "us-east-1", cfg.Data["region"])
				assert.Equal(t, "my-bucket", cfg.Data["bucket"])
			},
		},
		{
			name:     "nested structure",
			testFile: "nested.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				repo, ok := cfg.Data["repo"].(map[string]interface{})
				require.True(t, ok, "repo should be a map")
				assert.Equal(t, "json", repo["output"])
			},
		},
		{
			name:     "mixed types",
			testFile: "mixed-types.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.Equal(t, "test-project", cfg.Data["name"])
				assert.Equal(t, 1, cfg.Data["version"])
				assert.Equal(t, true, cfg.Data["enabled"])
				assert.Equal(t, 30.5, cfg.Data["timeout"])
			},
		},
		{
			name:     "empty file",
			testFile: "empty.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				// Empty YAML unmarshals to a nil map, which is acceptable.
				assert.NotEmpty(t, cfg.Source)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)

			cfg, err := Load()
			require.NoError(t, err)
			tt.checkFunc(t, cfg)
		})
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	t.Setenv("OPSCTL_CFG", "/nonexistent/path/opsctl.yaml")
	Config = Type{}

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoadCfgIsDirectory(t *testing.T) {
	t.Setenv("OPSCTL_CFG", "testdata")
	Config = Type{}

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "points to a directory")
}

func TestGetString(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue []string
		want         string
		wantErr      bool
	}{
		{name: "simple value", key: "region", want: "us-east-1"},
		{
			name:         "missing key with default",
			key:          "missing",
			defaultValue: []string{"fallback"},
			want:         "fallback",
		},
		{name: "missing key without default", key: "missing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, "simple.yaml")
			_, err := Load()
			require.NoError(t, err)

			got, err := GetString(tt.key, tt.defaultValue...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNamespaceFallback(t *testing.T) {
	setupTestConfig(t, "nested.yaml")

	_, err := Load("repo")
	require.NoError(t, err)

	// Namespaced key wins...
	got, err := GetString("output")
	require.NoError(t, err)
	assert.Equal(t, "json", got)

	// ...and non-namespaced dotted paths still resolve.
	got, err = GetString("github.api")
	require.NoError(t, err)
	assert.Equal(t, "https://ghe.example.com/api/v3", got)
}

func TestGetWalksReceiverData(t *testing.T) {
	// A Type value kept by a caller must resolve against its own data,
	// not whatever the package-level Config happens to hold.
	Config = Type{Data: map[string]interface{}{"region": "global-value"}}
	t.Cleanup(func() { Config = Type{} })

	local := Type{Data: map[string]interface{}{"region": "local-value"}}

	got, err := local.get("region")
	require.NoError(t, err)
	assert.Equal(t, "local-value", got)

	// Keys absent from the local copy miss even if the global has them.
	Config.Data["only-global"] = "x"
	_, err = local.get("only-global")
	assert.Error(t, err)
}

func TestGetInt(t *testing.T) {
	setupTestConfig(t, "mixed-types.yaml")
	_, err := Load()
	require.NoError(t, err)

	v, err := GetInt("version")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// Floats are truncated, matching YAML's loose numerics.
	v, err = GetInt("timeout")
	require.NoError(t, err)
	assert.Equal(t, 30, v)

	v, err = GetInt("missing", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = GetInt("name")
	assert.Error(t, err)
}

func TestGetBool(t *testing.T) {
	setupTestConfig(t, "mixed-types.yaml")
	_, err := Load()
	require.NoError(t, err)

	v, err := GetBool("enabled")
	require.NoError(t, err)
	assert.True(t, v)

	v, err = GetBool("missing", true)
	require.NoError(t, err)
	assert.True(t, v)
}

func TestGetStringSlice(t *testing.T) {
	setupTestConfig(t, "mixed-types.yaml")
	_, err := Load()
	require.NoError(t, err)

	v, err := GetStringSlice("tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, v)

	v, err = GetStringSlice("missing", []string{"d"})
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, v)

	_, err = GetStringSlice("name")
	assert.Error(t, err)
}
