package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_NestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	_, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_LoadsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := `work_dir = "/srv/adpush"

[push]
org = "myorg"
source = "src-1"
requests_per_second = 3
stale_after_hours = 48

[ldap]
host = "dc01.example.com"
max_parallel_exports = 4
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "/srv/adpush", store.GetString("work_dir"))
	assert.Equal(t, "myorg", store.GetString("push.org"))
	assert.Equal(t, 3, store.GetInt("push.requests_per_second"))
	assert.InDelta(t, 48.0, store.GetFloat("push.stale_after_hours"), 1e-9)
	assert.Equal(t, "dc01.example.com", store.GetString("ldap.host"))
	assert.Equal(t, 4, store.GetInt("ldap.max_parallel_exports"))
	assert.Equal(t, []string{
		"ldap.host",
		"ldap.max_parallel_exports",
		"push.org",
		"push.requests_per_second",
		"push.source",
		"push.stale_after_hours",
		"work_dir",
	}, store.Keys())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("push.org", "myorg"))
	require.NoError(t, store.Set("push.requests_per_second", 5))
	require.NoError(t, store.Set("push.stale_after_hours", 52.8))

	assert.Equal(t, "myorg", store.GetString("push.org"))
	assert.Empty(t, store.GetString("push.requests_per_second"))
	assert.Equal(t, 5, store.GetInt("push.requests_per_second"))
	assert.Equal(t, 0, store.GetInt("push.org"))
	assert.InDelta(t, 52.8, store.GetFloat("push.stale_after_hours"), 1e-9)
	assert.InDelta(t, 5.0, store.GetFloat("push.requests_per_second"), 1e-9)
	assert.Zero(t, store.GetFloat("push.org"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_Persistence_WritesNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("push.api_key", "xx-secret"))
	require.NoError(t, store.Set("ldap.host", "dc01"))
	require.NoError(t, store.Set("ldap.max_parallel_exports", 2))
	require.NoError(t, store.Set("work_dir", "./temp"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[push]")
	assert.Contains(t, string(raw), "[ldap]")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "xx-secret", reloaded.GetString("push.api_key"))
	assert.Equal(t, "dc01", reloaded.GetString("ldap.host"))
	assert.Equal(t, 2, reloaded.GetInt("ldap.max_parallel_exports"))
	assert.Equal(t, "./temp", reloaded.GetString("work_dir"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("push.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Set_KeyConflict(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("push.org", "myorg"))

	assert.Error(t, store.Set("push", "flat"))
}

func TestConfigStore_Set_WriteFileError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("ldap.host", "dc01"))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("ldap.bind_user", "svc"))
}

func TestConfigStore_Set_Unmarshallable(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Set("channel", make(chan int)))
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid toml syntax ][}{"), 0600))

	assert.Error(t, store.Load())
}

func TestConfigStore_Load_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), nil, 0600))

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("ldap.max_parallel_exports", n+1)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("ldap.max_parallel_exports")
		}()
	}
	wg.Wait()

	assert.Positive(t, store.GetInt("ldap.max_parallel_exports"))
}

func TestUnflattenMap(t *testing.T) {
	nested, err := unflattenMap(map[string]any{
		"work_dir":  "./temp",
		"push.org":  "o",
		"push.x.y":  1,
		"ldap.host": "h",
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"work_dir": "./temp",
		"push":     map[string]any{"org": "o", "x": map[string]any{"y": 1}},
		"ldap":     map[string]any{"host": "h"},
	}, nested)
	assert.Equal(t, map[string]any{
		"work_dir":  "./temp",
		"push.org":  "o",
		"push.x.y":  1,
		"ldap.host": "h",
	}, flattenMap(nested, ""))
}
