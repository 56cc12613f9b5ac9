package dockerlogs

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/juliog922/chatlink-v2/internal/domain"
)

// ---------- Fakes ----------

type fakeRuntime struct {
	containers []ContainerInfo
	listErr    error

	logStream io.ReadCloser
	logsErr   error
	gotID     string
	gotSince  int64
	gotUntil  int64
}

func (f *fakeRuntime) ListContainers(context.Context) ([]ContainerInfo, error) {
	return f.containers, f.listErr
}

func (f *fakeRuntime) ContainerLogs(_ context.Context, id string, since, until int64) (io.ReadCloser, error) {
	f.gotID = id
	f.gotSince = since
	f.gotUntil = until
	if f.logsErr != nil {
		return nil, f.logsErr
	}
	return f.logStream, nil
}

// muxFrame builds one multiplexed log frame the way the daemon does.
func muxFrame(stream byte, payload string) []byte {
	hdr := make([]byte, 8)
	hdr[0] = stream
	binary.BigEndian.PutUint32(hdr[4:8], uint32(len(payload)))
	return append(hdr, payload...)
}

// brokenReader yields some frames then fails mid-stream.
type brokenReader struct {
	data []byte
	off  int
}

func (b *brokenReader) Read(p []byte) (int, error) {
	if b.off >= len(b.data) {
		return 0, fmt.Errorf("connection reset")
	}
	n := copy(p, b.data[b.off:])
	b.off += n
	return n, nil
}

func (b *brokenReader) Close() error { return nil }

// ---------- Directory ----------

func TestResolveService(t *testing.T) {
	rt := &fakeRuntime{containers: []ContainerInfo{
		{ID: "aaa", Labels: map[string]string{composeServiceLabel: "web"}},
		{ID: "bbb", Labels: map[string]string{composeServiceLabel: "worker"}},
		{ID: "ccc", Labels: map[string]string{composeServiceLabel: "worker"}},
		{ID: "ddd", Labels: nil},
	}}
	d := NewDirectory(rt)

	id, err := d.ResolveService(context.Background(), "worker")
	if err != nil {
		t.Fatalf("ResolveService: %v", err)
	}
	if id != "bbb" {
		t.Fatalf("expected first matching container bbb, got %s", id)
	}
}

func TestResolveService_CaseSensitive(t *testing.T) {
	rt := &fakeRuntime{containers: []ContainerInfo{
		{ID: "aaa", Labels: map[string]string{composeServiceLabel: "Web"}},
	}}
	d := NewDirectory(rt)

	if _, err := d.ResolveService(context.Background(), "web"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for case mismatch, got %v", err)
	}
}

func TestResolveService_NotFound(t *testing.T) {
	d := NewDirectory(&fakeRuntime{})
	if _, err := d.ResolveService(context.Background(), "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveService_RuntimeUnavailable(t *testing.T) {
	d := NewDirectory(&fakeRuntime{listErr: fmt.Errorf("cannot connect to docker daemon")})
	if _, err := d.ResolveService(context.Background(), "web"); !errors.Is(err, domain.ErrRuntimeUnavailable) {
		t.Fatalf("expected ErrRuntimeUnavailable, got %v", err)
	}
}

func TestListServiceNames_DedupFirstSeenOrder(t *testing.T) {
	rt := &fakeRuntime{containers: []ContainerInfo{
		{ID: "1", Labels: map[string]string{composeServiceLabel: "web"}},
		{ID: "2", Labels: map[string]string{composeServiceLabel: "worker"}},
		{ID: "3", Labels: map[string]string{composeServiceLabel: "web"}},
		{ID: "4", Labels: map[string]string{"other.label": "x"}},
		{ID: "5", Labels: map[string]string{composeServiceLabel: "db"}},
	}}
	d := NewDirectory(rt)

	services, err := d.ListServiceNames(context.Background())
	if err != nil {
		t.Fatalf("ListServiceNames: %v", err)
	}
	want := []string{"web", "worker", "db"}
	if len(services) != len(want) {
		t.Fatalf("expected %v, got %v", want, services)
	}
	for i := range want {
		if services[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, services)
		}
	}
}

// ---------- ClampLimit ----------

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		set       bool
		want      int
	}{
		{"unset yields default", 0, false, 1000},
		{"zero clamps up", 0, true, 1},
		{"negative clamps up", -5, true, 1},
		{"in range passes", 500, true, 500},
		{"max passes", 20000, true, 20000},
		{"above max clamps down", 99999, true, 20000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampLimit(tt.requested, tt.set); got != tt.want {
				t.Fatalf("ClampLimit(%d, %v) = %d, want %d", tt.requested, tt.set, got, tt.want)
			}
		})
	}
}

// ---------- Filter ----------

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestFilter_WindowBounds(t *testing.T) {
	rt := &fakeRuntime{logStream: io.NopCloser(bytes.NewReader(nil))}
	f := NewFilter(rt)

	if _, err := f.Run(context.Background(), "abc", day("2024-03-15"), "", 10); err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantSince := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC).Unix()
	wantUntil := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC).Unix()
	if rt.gotSince != wantSince || rt.gotUntil != wantUntil {
		t.Fatalf("window [%d, %d], want [%d, %d]", rt.gotSince, rt.gotUntil, wantSince, wantUntil)
	}
	if rt.gotID != "abc" {
		t.Fatalf("expected container abc, got %s", rt.gotID)
	}
}

func TestFilter_PatternIsSubstringCaseSensitive(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(muxFrame(1, "2024-03-15T10:00:00Z GET /healthz 200\n"))
	stream.Write(muxFrame(2, "2024-03-15T10:00:01Z ERROR db timeout\n"))
	stream.Write(muxFrame(1, "2024-03-15T10:00:02Z error lowercase\n2024-03-15T10:00:03Z ERROR again\n"))

	rt := &fakeRuntime{logStream: io.NopCloser(&stream)}
	f := NewFilter(rt)

	lines, err := f.Run(context.Background(), "abc", day("2024-03-15"), "ERROR", 100)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 matching lines, got %d: %v", len(lines), lines)
	}
	for _, l := range lines {
		if !strings.Contains(l, "ERROR") {
			t.Fatalf("line does not contain pattern: %q", l)
		}
	}
}

func TestFilter_EmptyPatternMatchesEverything(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(muxFrame(1, "one\ntwo\n"))
	stream.Write(muxFrame(2, "three\n"))

	rt := &fakeRuntime{logStream: io.NopCloser(&stream)}
	f := NewFilter(rt)

	lines, err := f.Run(context.Background(), "abc", day("2024-03-15"), "", 100)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %v", lines)
	}
}

func TestFilter_StopsAtLimit(t *testing.T) {
	var stream bytes.Buffer
	for i := 0; i < 50; i++ {
		stream.Write(muxFrame(1, fmt.Sprintf("line %d\n", i)))
	}

	rt := &fakeRuntime{logStream: io.NopCloser(&stream)}
	f := NewFilter(rt)

	lines, err := f.Run(context.Background(), "abc", day("2024-03-15"), "", 7)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines, got %d", len(lines))
	}
	if lines[0] != "line 0" || lines[6] != "line 6" {
		t.Fatalf("lines out of stream order: %v", lines)
	}
}

func TestFilter_LimitCutoffBeforeStreamError(t *testing.T) {
	// The limit is hit before the broken tail is ever read, so the
	// early exit must win over the pending transport error.
	data := append(muxFrame(1, "a\nb\nc\n"), muxFrame(1, "d\n")...)
	rt := &fakeRuntime{logStream: &brokenReader{data: data}}
	f := NewFilter(rt)

	lines, err := f.Run(context.Background(), "abc", day("2024-03-15"), "", 3)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %v", lines)
	}
}

func TestFilter_ChunkErrorDiscardsPartialResults(t *testing.T) {
	data := muxFrame(1, "kept so far\n")
	rt := &fakeRuntime{logStream: &brokenReader{data: data}}
	f := NewFilter(rt)

	lines, err := f.Run(context.Background(), "abc", day("2024-03-15"), "", 100)
	if !errors.Is(err, domain.ErrRuntimeUnavailable) {
		t.Fatalf("expected ErrRuntimeUnavailable, got %v", err)
	}
	if lines != nil {
		t.Fatalf("partial results must be discarded, got %v", lines)
	}
}

func TestFilter_LogsCallFailure(t *testing.T) {
	rt := &fakeRuntime{logsErr: fmt.Errorf("daemon gone")}
	f := NewFilter(rt)

	if _, err := f.Run(context.Background(), "abc", day("2024-03-15"), "", 10); !errors.Is(err, domain.ErrRuntimeUnavailable) {
		t.Fatalf("expected ErrRuntimeUnavailable, got %v", err)
	}
}

func TestFilter_RawTTYStream(t *testing.T) {
	// A TTY container's stream has no frame headers at all.
	raw := "plain line one\nplain line two\n"
	rt := &fakeRuntime{logStream: io.NopCloser(strings.NewReader(raw))}
	f := NewFilter(rt)

	lines, err := f.Run(context.Background(), "abc", day("2024-03-15"), "", 100)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(lines) != 2 || lines[0] != "plain line one" {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

func TestFilter_EmptyStream(t *testing.T) {
	rt := &fakeRuntime{logStream: io.NopCloser(bytes.NewReader(nil))}
	f := NewFilter(rt)

	lines, err := f.Run(context.Background(), "abc", day("2024-03-15"), "x", 10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no lines, got %v", lines)
	}
}
