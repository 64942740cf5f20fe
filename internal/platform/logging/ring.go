package logging

import (
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// Ring is a zapcore.Core that keeps the most recent entries as rendered lines.
type Ring struct {
	buf   *ringBuffer
	enc   zapcore.Encoder
	level zapcore.LevelEnabler
}

type ringBuffer struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
}

func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 200
	}
	cfg := encoderConfig()
	cfg.CallerKey = zapcore.OmitKey
	cfg.StacktraceKey = zapcore.OmitKey
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")

	return &Ring{
		buf:   &ringBuffer{lines: make([]string, capacity)},
		enc:   zapcore.NewConsoleEncoder(cfg),
		level: zapcore.DebugLevel,
	}
}

func (r *Ring) withLevel(level zapcore.LevelEnabler) *Ring {
	return &Ring{buf: r.buf, enc: r.enc.Clone(), level: level}
}

func (r *Ring) Enabled(level zapcore.Level) bool {
	return r.level.Enabled(level)
}

func (r *Ring) With(fields []zapcore.Field) zapcore.Core {
	clone := &Ring{buf: r.buf, enc: r.enc.Clone(), level: r.level}
	for _, field := range fields {
		field.AddTo(clone.enc)
	}
	return clone
}

func (r *Ring) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if r.Enabled(entry.Level) {
		return checked.AddCore(entry, r)
	}
	return checked
}

func (r *Ring) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	encoded, err := r.enc.EncodeEntry(entry, fields)
	if err != nil {
		return err
	}
	line := strings.TrimRight(encoded.String(), "\n")
	encoded.Free()

	r.buf.push(line)
	return nil
}

func (r *Ring) Sync() error {
	return nil
}

// Lines returns retained entries, oldest first.
func (r *Ring) Lines() []string {
	if r == nil {
		return nil
	}
	return r.buf.snapshot()
}

func (b *ringBuffer) push(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lines[b.next] = line
	b.next = (b.next + 1) % len(b.lines)
	if b.next == 0 {
		b.full = true
	}
}

func (b *ringBuffer) snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.full {
		return append([]string(nil), b.lines[:b.next]...)
	}
	out := make([]string, 0, len(b.lines))
	out = append(out, b.lines[b.next:]...)
	out = append(out, b.lines[:b.next]...)
	return out
}
