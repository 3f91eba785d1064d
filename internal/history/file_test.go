package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileRing_MirrorsAppendsAndRemovesOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aesdsocketdata")

	fr, err := NewFileRing(context.Background(), path, 10, zap.NewNop().Sugar())
	require.NoError(t, err)

	fr.Append([]byte("hello\n"))
	fr.Append([]byte("world\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello\nworld\n", string(data))

	total := fr.Len()
	e, _, ok := fr.FindByLogicalOffset(total - uint64(len("world\n")))
	require.True(t, ok)
	require.Equal(t, "world\n", string(e.Data))

	require.NoError(t, fr.Close())
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestFileRing_MirrorsEverythingEvenPastRingCapacity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aesdsocketdata")

	fr, err := NewFileRing(context.Background(), path, 2, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer fr.Close()

	fr.Append([]byte("a\n"))
	fr.Append([]byte("b\n"))
	fr.Append([]byte("c\n")) // evicts "a\n" from the in-memory ring

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "a\nb\nc\n", string(data), "the backing file is the full persisted log, unbounded by the ring's retention")

	var got []string
	fr.ForEach(func(e Entry) { got = append(got, string(e.Data)) })
	require.Equal(t, []string{"b\n", "c\n"}, got, "reads are still served from the bounded in-memory ring")
}

func TestFileRing_WriteFailureStillAdvancesRing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aesdsocketdata")

	fr, err := NewFileRing(context.Background(), path, 10, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer fr.Close()

	require.NoError(t, fr.f.Close()) // force the next mirror write to fail

	fr.Append([]byte("a\n"))

	var got []string
	fr.ForEach(func(e Entry) { got = append(got, string(e.Data)) })
	require.Equal(t, []string{"a\n"}, got, "in-memory ring still advances even when the mirror write fails")
}
