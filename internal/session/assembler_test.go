package session

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, a *Assembler) [][]byte {
	t.Helper()
	var out [][]byte
	for {
		cmd, ok := a.ExtractOne()
		if !ok {
			return out
		}
		out = append(out, cmd)
	}
}

func TestAssembler_SplitAcrossIngests(t *testing.T) {
	a := NewAssembler(0)

	require.NoError(t, a.Ingest([]byte("hel")))
	require.Empty(t, drain(t, a))

	require.NoError(t, a.Ingest([]byte("lo\nwor")))
	got := drain(t, a)
	require.Equal(t, [][]byte{[]byte("hello\n")}, got)

	require.NoError(t, a.Ingest([]byte("ld\n")))
	got = drain(t, a)
	require.Equal(t, [][]byte{[]byte("world\n")}, got)
}

func TestAssembler_MultipleCommandsInOneIngest(t *testing.T) {
	a := NewAssembler(0)
	require.NoError(t, a.Ingest([]byte("a\nb\nc\n")))

	got := drain(t, a)
	require.Equal(t, [][]byte{[]byte("a\n"), []byte("b\n"), []byte("c\n")}, got)
}

func TestAssembler_MatchesSplitOnArbitraryChunking(t *testing.T) {
	stream := []byte("one\ntwo\nthree\nfour")
	chunkSizes := []int{1, 2, 3, 5, 7, 100}

	for _, chunkSize := range chunkSizes {
		a := NewAssembler(0)
		var got [][]byte
		for i := 0; i < len(stream); i += chunkSize {
			end := min(i+chunkSize, len(stream))
			require.NoError(t, a.Ingest(stream[i:end]))
			got = append(got, drain(t, a)...)
		}

		want := bytes.SplitAfter(stream, []byte("\n"))
		want = want[:len(want)-1] // drop the unterminated "four" residue
		require.Equal(t, want, got, "chunk size %d", chunkSize)
	}
}

func TestAssembler_GrowsByFixedIncrement(t *testing.T) {
	a := NewAssembler(0)
	big := bytes.Repeat([]byte("x"), growChunk+1)
	big[len(big)-1] = '\n'

	require.NoError(t, a.Ingest(big))
	got, ok := a.ExtractOne()
	require.True(t, ok)
	require.Equal(t, big, got)
}

func TestAssembler_RejectsGrowthPastCap(t *testing.T) {
	a := NewAssembler(growChunk)
	require.NoError(t, a.Ingest(bytes.Repeat([]byte("x"), growChunk)))

	err := a.Ingest([]byte("x"))
	require.ErrorIs(t, err, errRxBufferCapExceeded)
}
