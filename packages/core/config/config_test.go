package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/hitclient/packages/http"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hitclient.config.json", `{
		"host": "httpbin.org",
		"path": "/",
		"username": "user",
		"password": "challenge",
		"timeout": 5000,
		"followRedirects": false,
		"headers": {"User-Agent": "hitclient-test"}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "httpbin.org", cfg.Host)
	assert.Equal(t, "user", cfg.Username)
	assert.Equal(t, 5000, cfg.Timeout)
	assert.False(t, cfg.GetFollowRedirects())
	assert.True(t, cfg.GetValidateSSL())
	assert.Equal(t, 10, cfg.MaxRedirects)
	assert.Equal(t, "hitclient-test", cfg.Headers["User-Agent"])
}

func TestLoadConfig_YAMLWithEnvExpansion(t *testing.T) {
	t.Setenv("HITCLIENT_TEST_PASSWORD", "challenge")

	path := writeFile(t, t.TempDir(), ".hitclient.yaml", `
url: http://httpbin.org/basic-auth/user/challenge
username: user
password: ${HITCLIENT_TEST_PASSWORD}
port: 8080
authType: digest
rateLimit: 2.5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://httpbin.org/basic-auth/user/challenge", cfg.URL)
	assert.Equal(t, "challenge", cfg.Password)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "digest", cfg.AuthType)
	assert.Equal(t, 2.5, cfg.RateLimit)
}

func TestLoadConfig_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown field", "bad.json", `{"hostname": "httpbin.org"}`},
		{"wrong type", "bad.json", `{"port": "eighty"}`},
		{"port out of range", "bad.yaml", "port: 70000\n"},
		{"unknown auth type", "bad.yaml", "authType: bearer\n"},
		{"header value not a string", "bad.json", `{"headers": {"X-Retry": 3}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)
			_, err := LoadConfig(path)
			require.Error(t, err)

			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Problems)
		})
	}
}

func TestLoadConfig_ParseError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.json", `{"host": `)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestFindAndLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.True(t, cfg.IsDefault())
	assert.Empty(t, FindConfigPath(dir))

	writeFile(t, dir, ".hitclient.yml", "host: example.com\n")
	writeFile(t, dir, ".hitclient.json", `{"host": "httpbin.org"}`)

	cfg, err = FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "httpbin.org", cfg.Host)
	assert.Equal(t, filepath.Join(dir, ".hitclient.json"), FindConfigPath(dir))
}

func TestConfig_Merge(t *testing.T) {
	base := DefaultConfig()
	base.Host = "httpbin.org"
	base.Username = "user"
	base.Headers = map[string]string{"A": "1"}

	merged := base.Merge(&Config{
		Path:        "/get",
		ValidateSSL: BoolPtr(false),
		Headers:     map[string]string{"B": "2"},
	})

	assert.Equal(t, "httpbin.org", merged.Host)
	assert.Equal(t, "/get", merged.Path)
	assert.Equal(t, "user", merged.Username)
	assert.False(t, merged.GetValidateSSL())
	assert.True(t, merged.GetFollowRedirects())
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, merged.Headers)
	assert.Equal(t, map[string]string{"A": "1"}, base.Headers)

	assert.Same(t, base, base.Merge(nil))
}

func TestConfig_ClientConfig(t *testing.T) {
	cfg := DefaultConfig().Merge(&Config{
		Host:     "httpbin.org",
		Path:     "/",
		Username: "user",
		Password: "challenge",
		AuthType: "digest",
		Timeout:  1500,
	})

	clientCfg, err := cfg.ClientConfig()
	require.NoError(t, err)

	assert.Equal(t, http.AuthDigest, clientCfg.AuthType)
	assert.Equal(t, 1500*time.Millisecond, clientCfg.Timeout)
	require.NotNil(t, clientCfg.FollowRedirects)
	assert.True(t, *clientCfg.FollowRedirects)

	client, err := http.NewClient(clientCfg)
	require.NoError(t, err)
	defer client.Close()

	user, ok := client.Username()
	assert.True(t, ok)
	assert.Equal(t, "user", user)
}

func TestConfig_ClientConfigWithoutTarget(t *testing.T) {
	clientCfg, err := DefaultConfig().ClientConfig()
	require.NoError(t, err)

	client, err := http.NewClient(clientCfg)
	assert.Nil(t, client)
	assert.ErrorIs(t, err, http.ErrNoTarget)
}

func TestConfig_ClientConfigInvalidAuthType(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AuthType = "bearer"
	_, err := cfg.ClientConfig()
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig().Merge(&Config{Host: "httpbin.org", Port: 8080})

	for _, name := range []string{"out.json", "out.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, cfg.SaveConfig(path))

			loaded, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, "httpbin.org", loaded.Host)
			assert.Equal(t, 8080, loaded.Port)
		})
	}
}
