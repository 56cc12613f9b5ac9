package dockerlogs

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/juliog922/chatlink-v2/internal/domain"
)

const (
	// DefaultLimit applies when the caller does not ask for one.
	DefaultLimit = 1000
	// MaxLimit bounds memory per request against an unbounded day of logs.
	MaxLimit = 20000
)

// ClampLimit maps a requested line limit onto the effective one:
// unset (<= 0 from an absent query parameter) yields the default,
// anything else lands in [1, MaxLimit].
func ClampLimit(requested int, set bool) int {
	if !set {
		return DefaultLimit
	}
	if requested < 1 {
		return 1
	}
	if requested > MaxLimit {
		return MaxLimit
	}
	return requested
}

// Filter consumes a container's historical log stream for one UTC day,
// keeps lines matching a substring pattern, and stops at a line limit.
type Filter struct {
	rt Runtime
}

func NewFilter(rt Runtime) *Filter {
	return &Filter{rt: rt}
}

// Run streams logs for the given container over the inclusive UTC
// window [day 00:00:00, day 23:59:59] and returns the first limit
// matching lines in stream delivery order. An empty pattern matches
// every line; otherwise the test is a case-sensitive substring check.
// Any mid-stream transport error discards partial results.
func (f *Filter) Run(ctx context.Context, containerID string, day time.Time, pattern string, limit int) ([]string, error) {
	since := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC).Unix()
	until := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, time.UTC).Unix()

	stream, err := f.rt.ContainerLogs(ctx, containerID, since, until)
	if err != nil {
		return nil, fmt.Errorf("%w: container logs: %v", domain.ErrRuntimeUnavailable, err)
	}
	defer stream.Close()

	lines := make([]string, 0, limit)
	err = eachChunk(stream, func(chunk []byte) bool {
		for _, l := range strings.Split(string(chunk), "\n") {
			if l == "" {
				continue
			}
			if pattern == "" || strings.Contains(l, pattern) {
				lines = append(lines, l)
				if len(lines) >= limit {
					return false
				}
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("%w: read log stream: %v", domain.ErrRuntimeUnavailable, err)
	}

	return lines, nil
}

// eachChunk feeds the stream's payload chunks to emit until the stream
// ends, emit asks to stop, or a read fails. The Docker daemon
// multiplexes stdout and stderr into 8-byte-header frames unless the
// container runs with a TTY, in which case the stream is raw text.
func eachChunk(r io.Reader, emit func([]byte) bool) error {
	hdr := make([]byte, 8)
	n, err := io.ReadFull(r, hdr)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		if n > 0 {
			emit(hdr[:n])
		}
		return nil
	}
	if err != nil {
		return err
	}

	if !isMuxHeader(hdr) {
		return eachRawChunk(io.MultiReader(bytes.NewReader(hdr), r), emit)
	}

	for {
		size := binary.BigEndian.Uint32(hdr[4:8])
		payload := make([]byte, size)
		if _, err := io.ReadFull(r, payload); err != nil {
			return fmt.Errorf("truncated log frame: %w", err)
		}
		if !emit(payload) {
			return nil
		}

		if _, err := io.ReadFull(r, hdr); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("truncated frame header: %w", err)
		}
	}
}

// isMuxHeader recognizes a multiplexed frame header: the stream kind
// byte is stdin/stdout/stderr and the three padding bytes are zero.
func isMuxHeader(hdr []byte) bool {
	return hdr[0] <= 2 && hdr[1] == 0 && hdr[2] == 0 && hdr[3] == 0
}

func eachRawChunk(r io.Reader, emit func([]byte) bool) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if !emit(buf[:n]) {
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
