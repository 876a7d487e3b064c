package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	a := ObjectKey("p1", "Trial Balance.xlsx")
	b := ObjectKey("p1", "Trial Balance.xlsx")

	require.NotEqual(t, a, b)
	require.True(t, strings.HasPrefix(a, "project-p1/"))
	require.True(t, strings.HasSuffix(a, "-Trial_Balance.xlsx"))
}

func TestObjectKeyStripsDirectories(t *testing.T) {
	key := ObjectKey("p1", "../../etc/passwd")
	require.True(t, strings.HasSuffix(key, "-passwd"))
	require.NotContains(t, strings.TrimPrefix(key, "project-p1/"), "/")

	key = ObjectKey("p1", `C:\Users\me\..`)
	require.True(t, strings.HasSuffix(key, "-file"))
}

func exerciseBackend(t *testing.T, backend Backend) {
	t.Helper()
	ctx := context.Background()

	key := ObjectKey("p1", "ledger.csv")
	require.NoError(t, backend.Upload(ctx, key, strings.NewReader("a,b,c"), 5, "text/csv"))
	require.NoError(t, backend.Upload(ctx, ObjectKey("p2", "other.csv"), strings.NewReader("x"), 1, "text/csv"))

	rc, err := backend.Download(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "a,b,c", string(data))

	objects, err := backend.List(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	require.Equal(t, key, objects[0].Key)
	require.EqualValues(t, 5, objects[0].Size)

	require.NoError(t, backend.Delete(ctx, key))
	require.NoError(t, backend.Delete(ctx, key), "deleting a missing object is not an error")

	_, err = backend.Download(ctx, key)
	require.ErrorIs(t, err, ErrObjectNotFound)

	objects, err = backend.List(ctx, "p1")
	require.NoError(t, err)
	require.Empty(t, objects)
}

func TestLocalBackend(t *testing.T) {
	backend, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	exerciseBackend(t, backend)
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	backend, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	err = backend.Upload(context.Background(), "../outside", strings.NewReader("x"), 1, "text/plain")
	require.Error(t, err)
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemory())
}
