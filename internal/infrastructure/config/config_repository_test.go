package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haxorport/rawrelay/internal/domain/model"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	repo := NewConfigRepository()

	config, err := repo.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, model.NewConfig(), config)
	assert.Equal(t, 20*time.Second, config.ReadTimeout)
	assert.False(t, config.TLSVerify)
	assert.False(t, config.HasTarget())
}

func TestLoadReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `target_host: backend.local
target_port: 8443
use_tls: true
read_timeout: 2s
max_duration: 1m
transport: ws
proxy_url: socks5://127.0.0.1:1080
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := NewConfigRepository().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "backend.local", config.TargetHost)
	assert.Equal(t, 8443, config.TargetPort)
	assert.True(t, config.UseTLS)
	assert.Equal(t, 2*time.Second, config.ReadTimeout)
	assert.Equal(t, time.Minute, config.MaxDuration)
	assert.Equal(t, model.TransportWebSocket, config.Transport)
	assert.Equal(t, "socks5://127.0.0.1:1080", config.ProxyURL)
	assert.Equal(t, model.DefaultChunkSize, config.ChunkSize)

	opts := config.RelayOptions()
	assert.True(t, opts.MaxDuration.IsCapped())
	assert.Equal(t, time.Minute, opts.MaxDuration.Limit())
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("target_host: from-file\ntarget_port: 80\n"), 0644))
	t.Setenv("RAWRELAY_TARGET_HOST", "from-env")

	config, err := NewConfigRepository().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", config.TargetHost)
	assert.Equal(t, 80, config.TargetPort)
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()

	badPort := filepath.Join(dir, "port.yaml")
	require.NoError(t, os.WriteFile(badPort, []byte("target_port: 70000\n"), 0644))
	_, err := NewConfigRepository().Load(badPort)
	assert.Error(t, err)

	badTransport := filepath.Join(dir, "transport.yaml")
	require.NoError(t, os.WriteFile(badTransport, []byte("transport: carrier-pigeon\n"), 0644))
	_, err = NewConfigRepository().Load(badTransport)
	assert.Error(t, err)

	for name, content := range map[string]string{
		"bare-number.yaml":  "read_timeout: 20\n",
		"zero-idle.yaml":    "read_timeout: 0s\n",
		"negative-cap.yaml": "max_duration: -5s\n",
		"level.yaml":        "log_level: trace\n",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		_, err = NewConfigRepository().Load(path)
		assert.Error(t, err, name)
	}
}

func TestLoadRejectsBareNumberTimeoutFromEnvironment(t *testing.T) {
	t.Setenv("RAWRELAY_READ_TIMEOUT", "20")

	_, err := NewConfigRepository().Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), model.KeyReadTimeout)
}

func TestLoadAcceptsDurationsWithUnits(t *testing.T) {
	t.Setenv("RAWRELAY_CONNECT_TIMEOUT", "1500ms")

	config, err := NewConfigRepository().Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, config.ConnectTimeout)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	repo := NewConfigRepository()

	config := model.NewConfig()
	config.TargetHost = "example.com"
	config.TargetPort = 443
	config.UseTLS = true
	config.TLSFingerprint = "chrome"
	config.ReadTimeout = 4 * time.Second
	config.LogLevel = model.LogLevelDebug

	require.NoError(t, repo.Save(config, path))

	loaded, err := repo.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)
}

func TestGetDefaultPathIsUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := NewConfigRepository().GetDefaultPath()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".rawrelay", "config.yaml"), path)
}
