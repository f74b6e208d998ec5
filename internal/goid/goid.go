// Package goid reports the id of the calling goroutine.
package goid

import (
	"bytes"
	"fmt"
	"runtime"
	"strconv"
)

var prefix = []byte("goroutine ")

// ID returns the runtime id of the calling goroutine. Ids are never reused
// within a process, which makes them safe as map keys for per-goroutine state.
func ID() uint64 {
	var buf [64]byte
	id, err := parse(buf[:runtime.Stack(buf[:], false)])
	if err != nil {
		panic(err)
	}
	return id
}

// parse pulls the id out of a stack header like "goroutine 42 [running]:".
func parse(header []byte) (uint64, error) {
	rest, ok := bytes.CutPrefix(header, prefix)
	if !ok {
		return 0, fmt.Errorf("goid: parse: unexpected stack header %q", header)
	}

	end := bytes.IndexByte(rest, ' ')
	if end < 0 {
		return 0, fmt.Errorf("goid: parse: unterminated goroutine id in %q", header)
	}

	id, err := strconv.ParseUint(string(rest[:end]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("goid: parse: bad goroutine id: %w", err)
	}

	return id, nil
}
