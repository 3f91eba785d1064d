package session

import "errors"

// errRxBufferCapExceeded is returned by Assembler.Ingest when a configured
// max_rx_buffer cap (spec.md section 9's optional cap on unbounded growth) would be
// exceeded by the pending bytes plus the incoming chunk.
var errRxBufferCapExceeded = errors.New("session: receive buffer exceeded configured cap")
