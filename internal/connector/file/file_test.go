package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/crimson-sun/latewatch/internal/connector"
)

func cfgFor(path string) connector.ConnectorConfig {
	return connector.ConnectorConfig{Provider: "file", Extra: map[string]string{"path": path}}
}

func TestFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.csv")
	require.NoError(t, os.WriteFile(path, []byte("Nama\nAli\n"), 0o644))

	p, err := (&Connector{}).Fetch(context.Background(), cfgFor(path))
	require.NoError(t, err)
	assert.Equal(t, "Nama\nAli\n", string(p.Body))
	assert.Equal(t, "text/csv", p.ContentType)
	assert.Equal(t, "file:"+path, p.Source)
	assert.False(t, p.FetchedAt.IsZero())
}

func TestFetchContentTypeOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.dat")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	cfg := cfgFor(path)
	cfg.Extra["content_type"] = "application/json"
	p, err := (&Connector{}).Fetch(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "application/json", p.ContentType)
}

func TestFetchErrors(t *testing.T) {
	_, err := (&Connector{}).Fetch(context.Background(), connector.ConnectorConfig{})
	assert.Error(t, err)

	_, err = (&Connector{}).Fetch(context.Background(), cfgFor(filepath.Join(t.TempDir(), "missing.json")))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "application/json", ContentTypeFor("a/b/FEED.JSON"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ContentTypeFor("x.xlsx"))
	assert.Equal(t, "", ContentTypeFor("noext"))
}

func TestChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "feed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := (&Connector{}).Changes(ctx, cfgFor(path))
	require.NoError(t, err)

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`[]`), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(`[["Nama"],["Ali"]]`), 0o644))

	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	cancel()
	for range ch {
		// drain until the watcher goroutine closes the channel
	}
}
