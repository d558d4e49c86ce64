// Package app assembles the sink chain described by a CLI configuration.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bft-labs/errlog/internal/cliconfig"
	"github.com/bft-labs/errlog/pkg/log"
)

// Sink is a level-filtered sink bound to its output. Close releases the
// output and flushes buffered backends.
type Sink struct {
	*log.LevelFilter

	syncer func() error
	closer io.Closer
}

// Close flushes the backend and closes the output file, if any.
func (s *Sink) Close() error {
	var errs []error
	if s.syncer != nil {
		if err := s.syncer(); err != nil && s.closer != nil {
			// Sync errors are reported for file outputs only.
			errs = append(errs, fmt.Errorf("sync: %w", err))
		}
	}
	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close output: %w", err))
		}
	}
	return errors.Join(errs...)
}

// BuildSink creates the sink chain for cfg. stdout and stderr are the
// writers used for the "stdout" and "stderr" output targets; any other
// target is opened as a file in append mode. cfg must be validated.
func BuildSink(cfg cliconfig.Config, stdout, stderr io.Writer) (*Sink, error) {
	w, closer, err := openOutput(cfg.Output, stdout, stderr)
	if err != nil {
		return nil, err
	}

	s := &Sink{closer: closer}
	var backend log.Sink
	switch cfg.Backend {
	case cliconfig.BackendZerolog:
		backend = newZerolog(cfg, w)
	case cliconfig.BackendZap:
		zs := newZap(cfg, w)
		s.syncer = zs.Sync
		backend = zs
	default:
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("%w: %q", log.ErrUnknownBackend, cfg.Backend)
	}

	s.LevelFilter = log.NewLevelFilter(backend, cfg.MinLevel())
	return s, nil
}

func openOutput(target string, stdout, stderr io.Writer) (io.Writer, io.Closer, error) {
	switch target {
	case "", cliconfig.OutputStderr:
		return stderr, nil, nil
	case cliconfig.OutputStdout:
		return stdout, nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open output: %w", err)
	}
	return f, f, nil
}

func newZerolog(cfg cliconfig.Config, w io.Writer) *log.ZerologSink {
	if cfg.Format == cliconfig.FormatConsole {
		return log.NewConsoleZerologSink(w, cfg.TimeFormat)
	}
	if cfg.TimeFormat == "" {
		return log.NewZerologSink(zerolog.New(w).With().Timestamp().Logger())
	}
	return log.NewZerologSink(zerolog.New(w).Hook(timestampHook(cfg.TimeFormat)))
}

// timestampHook writes the event time in layout, leaving the package-wide
// zerolog.TimeFieldFormat untouched.
func timestampHook(layout string) zerolog.Hook {
	return zerolog.HookFunc(func(e *zerolog.Event, _ zerolog.Level, _ string) {
		e.Str(zerolog.TimestampFieldName, time.Now().Format(layout))
	})
}

func newZap(cfg cliconfig.Config, w io.Writer) *log.ZapSink {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	if cfg.TimeFormat != "" {
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(cfg.TimeFormat)
	}

	var enc zapcore.Encoder
	if cfg.Format == cliconfig.FormatConsole {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.DebugLevel)
	return log.NewZapSink(zap.New(core))
}
