// Package relay forwards newline-delimited JSON log records to a Logger.
//
// Each line is one record:
//
//	{"level":"info","args":["server started",{"port":8080}]}
//	{"level":"error","error":{"message":"m","stack":"..."},"context":{"httpCode":404},"args":[2,3]}
//
// An absent "context" key means no context argument is passed; an explicit
// null passes a nil context.
package relay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bft-labs/errlog/pkg/log"
)

// maxLineBytes bounds a single record.
const maxLineBytes = 1 << 20

// ErrUnsupportedLevel is returned for records whose level is neither info nor error.
var ErrUnsupportedLevel = errors.New("relay: unsupported level")

// Record is one decoded input line.
type Record struct {
	Level   string          `json:"level"`
	Error   json.RawMessage `json:"error,omitempty"`
	Context json.RawMessage `json:"context,omitempty"`
	Args    []any           `json:"args,omitempty"`
}

// Stats counts the outcome of a Run.
type Stats struct {
	Emitted int
	Skipped int
}

// Relay decodes records and emits them through a Logger.
type Relay struct {
	logger *log.Logger
	diag   zerolog.Logger
}

// New creates a Relay emitting to logger. Malformed lines are reported on diag.
func New(logger *log.Logger, diag zerolog.Logger) *Relay {
	return &Relay{logger: logger, diag: diag}
}

// Run reads records from in until EOF or until ctx is cancelled.
// Malformed records are skipped and counted; only read errors and
// cancellation end the run early. Reading happens on a separate goroutine,
// so cancellation returns promptly even while in blocks; that goroutine
// exits once its pending Read returns.
func (r *Relay) Run(ctx context.Context, in io.Reader) (Stats, error) {
	var stats Stats
	lines, readErr := scanLines(in)
	defer lines.stop()

	lineNo := 0
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		var (
			raw []byte
			ok  bool
		)
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case raw, ok = <-lines.c:
		}
		if !ok {
			if err := <-readErr; err != nil {
				return stats, fmt.Errorf("read records: %w", err)
			}
			return stats, nil
		}

		lineNo++
		line := bytes.TrimSpace(raw)
		if len(line) == 0 {
			continue
		}

		rec, err := Decode(line)
		if err == nil {
			err = r.Emit(rec)
		}
		if err != nil {
			stats.Skipped++
			r.diag.Warn().Err(err).Int("line", lineNo).Msg("skipping record")
			continue
		}
		stats.Emitted++
	}
}

// lineStream delivers scanned lines until the reader ends or stop is called.
type lineStream struct {
	c    chan []byte
	quit chan struct{}
	once sync.Once
}

func (l *lineStream) stop() {
	l.once.Do(func() { close(l.quit) })
}

// scanLines scans in on a goroutine. The error channel receives the scan
// result after the line channel is drained and closed.
func scanLines(in io.Reader) (*lineStream, <-chan error) {
	l := &lineStream{c: make(chan []byte), quit: make(chan struct{})}
	errc := make(chan error, 1)

	go func() {
		defer close(l.c)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case l.c <- line:
			case <-l.quit:
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()
	return l, errc
}

// Decode parses one record. Numbers are kept as json.Number.
func Decode(line []byte) (Record, error) {
	var rec Record
	if err := decodeJSON(line, &rec); err != nil {
		return rec, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// Emit writes rec through the logger.
func (r *Relay) Emit(rec Record) error {
	switch strings.ToLower(rec.Level) {
	case "info":
		r.logger.Info(rec.Args...)
		return nil
	case "error":
		errValue, err := decodeRaw(rec.Error)
		if err != nil {
			return fmt.Errorf("decode error: %w", err)
		}
		if len(rec.Context) == 0 {
			r.logger.Error(errValue, rec.Args...)
			return nil
		}
		contextData, err := decodeRaw(rec.Context)
		if err != nil {
			return fmt.Errorf("decode context: %w", err)
		}
		args := make([]any, 0, len(rec.Args)+1)
		args = append(args, contextData)
		args = append(args, rec.Args...)
		r.logger.Error(errValue, args...)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedLevel, rec.Level)
	}
}

func decodeRaw(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v any
	if err := decodeJSON(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeJSON(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}
