package artifacts

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := NewStore(filepath.Join(t.TempDir(), "raw"), logger)
	require.NoError(t, err)
	return store
}

func TestDumpAndRead(t *testing.T) {
	store := testStore(t)

	store.Dump("https://example.test/v/1", "web", []byte("<html>a</html>"))

	require.True(t, store.Has("https://example.test/v/1", "web"))
	body, err := store.Read("https://example.test/v/1", "web")
	require.NoError(t, err)
	require.Equal(t, []byte("<html>a</html>"), body)
}

func TestDumpOverwritesSameTarget(t *testing.T) {
	store := testStore(t)

	store.Dump("https://example.test/v/1", "web", []byte("first"))
	store.Dump("https://example.test/v/1", "web", []byte("second"))

	body, err := store.Read("https://example.test/v/1", "web")
	require.NoError(t, err)
	require.Equal(t, []byte("second"), body)
}

func TestLabelsAreIndependent(t *testing.T) {
	store := testStore(t)

	store.Dump("https://example.test/v/1", "web", []byte("desktop"))
	store.Dump("https://example.test/v/1", "mobile", []byte("phone"))

	require.True(t, store.Has("https://example.test/v/1", "web"))
	require.True(t, store.Has("https://example.test/v/1", "mobile"))
	require.False(t, store.Has("https://example.test/v/1", "api"))
}
