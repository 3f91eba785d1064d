package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cu-ecen-aeld/aesdsocket-go/internal/history"
)

func TestClassify_DataCommand(t *testing.T) {
	cmd, err := Classify([]byte("hello\n"))
	require.NoError(t, err)
	require.Nil(t, cmd.Seek)
	require.Equal(t, "hello\n", string(cmd.Data))
}

func TestClassify_SeekControl(t *testing.T) {
	cmd, err := Classify([]byte("AESDCHAR_IOCSEEKTO:1,2\n"))
	require.NoError(t, err)
	require.NotNil(t, cmd.Seek)
	require.Equal(t, 1, cmd.Seek.CmdIndex)
	require.Equal(t, uint64(2), cmd.Seek.CmdOffset)
}

func TestClassify_SeekControlMalformed(t *testing.T) {
	for _, in := range []string{
		"AESDCHAR_IOCSEEKTO:nope\n",
		"AESDCHAR_IOCSEEKTO:1\n",
		"AESDCHAR_IOCSEEKTO:1,\n",
		"AESDCHAR_IOCSEEKTO:,2\n",
		"AESDCHAR_IOCSEEKTO:-1,2\n",
	} {
		_, err := Classify([]byte(in))
		require.Error(t, err, in)
	}
}

func TestClassify_DataCommandThatHappensToContainThePrefixSubstring(t *testing.T) {
	// Only a command that STARTS WITH the literal is a seek control.
	cmd, err := Classify([]byte("not AESDCHAR_IOCSEEKTO:1,2 but data\n"))
	require.NoError(t, err)
	require.Nil(t, cmd.Seek)
}

func TestApply_DataCommandRewindsFPos(t *testing.T) {
	store := history.NewRing(10)
	cmd, err := Classify([]byte("abc\n"))
	require.NoError(t, err)

	fPos, err := Apply(store, cmd)
	require.NoError(t, err)
	require.Equal(t, uint64(0), fPos)
	require.Equal(t, uint64(4), store.Len())
}

func TestApply_SeekControl(t *testing.T) {
	store := history.NewRing(10)
	store.Append([]byte("abc\n"))
	store.Append([]byte("defgh\n"))

	cmd, err := Classify([]byte("AESDCHAR_IOCSEEKTO:1,2\n"))
	require.NoError(t, err)

	fPos, err := Apply(store, cmd)
	require.NoError(t, err)

	e, intra, ok := store.FindByLogicalOffset(fPos)
	require.True(t, ok)
	require.Equal(t, "fgh\n", string(e.Data[intra:]))
}

func TestApply_SeekControlRejectsEmptySlot(t *testing.T) {
	store := history.NewRing(10)
	store.Append([]byte("abc\n"))

	cmd, err := Classify([]byte("AESDCHAR_IOCSEEKTO:5,0\n"))
	require.NoError(t, err)

	_, err = Apply(store, cmd)
	require.Error(t, err)
}
