package session

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/cu-ecen-aeld/aesdsocket-go/internal/history"
)

// seekPrefix is the 19-byte literal that marks a command as a seek control
// rather than a data command.
const seekPrefix = "AESDCHAR_IOCSEEKTO:"

// Command is a classified, complete command ready to apply to a Store.
type Command struct {
	// Data is non-nil for a data command: the raw bytes, including the
	// trailing newline, to append verbatim.
	Data []byte

	// Seek is non-nil for a seek control.
	Seek *SeekControl
}

// SeekControl is a parsed AESDCHAR_IOCSEEKTO: command.
type SeekControl struct {
	CmdIndex  int
	CmdOffset uint64
}

// Classify parses a complete command (including its trailing '\n') into
// either a data command or a seek control. A malformed seek control is
// reported via err; the caller logs it and drops the command without
// closing the connection.
func Classify(cmd []byte) (Command, error) {
	if !bytes.HasPrefix(cmd, []byte(seekPrefix)) {
		return Command{Data: cmd}, nil
	}

	body := bytes.TrimSuffix(cmd[len(seekPrefix):], []byte("\n"))
	comma := bytes.IndexByte(body, ',')
	if comma < 0 {
		return Command{}, fmt.Errorf("session: seek control missing comma: %q", body)
	}

	cmdIndex, err := strconv.ParseUint(string(body[:comma]), 10, 32)
	if err != nil {
		return Command{}, fmt.Errorf("session: seek control write_cmd %q: %w", body[:comma], err)
	}
	cmdOffset, err := strconv.ParseUint(string(body[comma+1:]), 10, 64)
	if err != nil {
		return Command{}, fmt.Errorf("session: seek control write_cmd_offset %q: %w", body[comma+1:], err)
	}

	return Command{Seek: &SeekControl{CmdIndex: int(cmdIndex), CmdOffset: cmdOffset}}, nil
}

// Apply interprets cmd against store and returns the new f_pos the session
// worker should stream from. For a data command f_pos always rewinds to 0;
// for a seek control it is computed from the retained entries' slot layout.
// err is non-nil only for a malformed or out-of-range seek control; the
// store is left untouched in that case.
func Apply(store history.Store, cmd Command) (fPos uint64, err error) {
	if cmd.Seek == nil {
		store.Append(cmd.Data)
		return 0, nil
	}

	offset, ok := store.LogicalOffsetOf(cmd.Seek.CmdIndex, cmd.Seek.CmdOffset)
	if !ok {
		return 0, fmt.Errorf("session: seek control %d,%d: no such retained command slot",
			cmd.Seek.CmdIndex, cmd.Seek.CmdOffset)
	}
	return offset, nil
}
