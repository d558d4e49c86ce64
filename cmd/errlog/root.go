package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/errlog/internal/app"
	"github.com/bft-labs/errlog/internal/cliconfig"
	"github.com/bft-labs/errlog/internal/relay"
	"github.com/bft-labs/errlog/pkg/log"
)

const longHelp = `Emit log records through the errlog adapter.

Error values that carry a stack trace are logged by their stack, their
context map gains a fullError entry, and handled errors with an httpCode
below 500 are downgraded to warn. Everything else is passed through.

Positional values are parsed as JSON when possible and passed as strings
otherwise. Configuration is read from $HOME/.errlog/config.toml, then
ERRLOG_* environment variables, then flags.`

var exampleUsage = strings.TrimSpace(`
  errlog info "server started" '{"port":8080}'
  errlog error --message "user not found" --capture-stack --context '{"httpCode":404,"isHandledError":true}'
  tail -f app.ndjson | errlog pipe --watch --format json
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// session holds the state shared by the subcommands of one invocation.
type session struct {
	cfg     cliconfig.Config
	cfgPath string

	sink    *app.Sink
	logger  *log.Logger
	cancel  context.CancelFunc
	watchWG sync.WaitGroup
}

func newRootCommand() *cobra.Command {
	s := &session{cfg: cliconfig.DefaultConfig()}

	root := &cobra.Command{
		Use:           "errlog",
		Short:         "Normalize errors into structured log records",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&s.cfgPath, "config", "", "path to config file (default: $HOME/.errlog/config.toml)")
	flags.StringVar(&s.cfg.Level, "level", s.cfg.Level, "minimum level written: debug, info, warn or error")
	flags.StringVar(&s.cfg.Format, "format", s.cfg.Format, "output format: console or json")
	flags.StringVar(&s.cfg.Output, "output", s.cfg.Output, "output target: stderr, stdout or a file path")
	flags.StringVar(&s.cfg.Backend, "backend", s.cfg.Backend, "sink backend: zerolog or zap")
	flags.StringVar(&s.cfg.TimeFormat, "time-format", s.cfg.TimeFormat, "timestamp layout")
	flags.BoolVar(&s.cfg.Watch, "watch", s.cfg.Watch, "reload the level when the config file changes")
	flags.DurationVar(&s.cfg.WatchDebounce, "watch-debounce", s.cfg.WatchDebounce, "delay before applying config file changes")

	root.AddCommand(
		newInfoCommand(s),
		newErrorCommand(s),
		newPipeCommand(s),
	)
	return root
}

// run wraps a subcommand body with session setup and teardown.
func (s *session) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if err := s.setup(cmd); err != nil {
			return err
		}
		defer func() {
			if cerr := s.teardown(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		return fn(cmd, args)
	}
}

func (s *session) setup(cmd *cobra.Command) error {
	diag := cliconfig.Logger()

	cfgFile := s.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	hasFile := cfgFile != "" && cliconfig.FileExists(cfgFile)
	if hasFile {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&s.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&s.cfg, changed); err != nil {
		return err
	}

	if err := s.cfg.Validate(); err != nil {
		return err
	}
	diag.Debug().Interface("config", s.cfg).Msg("configuration")

	sink, err := app.BuildSink(s.cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("build sink: %w", err)
	}
	s.sink = sink
	s.logger = log.New(sink)

	ctx, cancel := context.WithCancel(cmd.Context())
	s.cancel = cancel

	if s.cfg.Watch {
		if !hasFile {
			diag.Warn().Str("path", cfgFile).Msg("watch requested but config file does not exist")
			return nil
		}
		if levelPinned(changed) {
			diag.Debug().Msg("level set by flag or environment, not watching")
			return nil
		}
		w := cliconfig.NewLevelWatcher(cfgFile, s.cfg.WatchDebounce, sink.SetLevel)
		s.watchWG.Add(1)
		go func() {
			defer s.watchWG.Done()
			if err := w.Run(ctx); err != nil {
				diag.Warn().Err(err).Msg("config watcher stopped")
			}
		}()
	}
	return nil
}

// levelPinned reports whether a source that outranks the config file set the
// level. Reloading the file must not override it.
func levelPinned(changed map[string]bool) bool {
	return changed["level"] || cliconfig.EnvLevelSet()
}

func (s *session) teardown() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.watchWG.Wait()
	if s.sink != nil {
		return s.sink.Close()
	}
	return nil
}

func newInfoCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "info [values...]",
		Short: "Write values at info level",
		RunE: s.run(func(cmd *cobra.Command, args []string) error {
			s.logger.Info(parseValues(args)...)
			return nil
		}),
	}
}

func newErrorCommand(s *session) *cobra.Command {
	var (
		message     string
		stack       string
		capture     bool
		fields      map[string]string
		contextJSON string
	)

	cmd := &cobra.Command{
		Use:   "error [values...]",
		Short: "Write an error with classification",
		Long: `Write an error with classification.

Without --stack or --capture-stack the message is a plain value and is
passed through at error level. The first positional value is the context
data unless --context is given.`,
		RunE: s.run(func(cmd *cobra.Command, args []string) error {
			errValue, err := buildError(message, stack, capture, fields)
			if err != nil {
				return err
			}

			values := parseValues(args)
			if cmd.Flags().Changed("context") {
				contextData, err := parseJSON(contextJSON)
				if err != nil {
					return fmt.Errorf("parse --context: %w", err)
				}
				values = append([]any{contextData}, values...)
			}

			s.logger.Error(errValue, values...)
			return nil
		}),
	}

	cmd.Flags().StringVar(&message, "message", "", "error message")
	cmd.Flags().StringVar(&stack, "stack", "", "stack trace to attach")
	cmd.Flags().BoolVar(&capture, "capture-stack", false, "attach the stack of this process")
	cmd.Flags().StringToStringVar(&fields, "field", nil, "extra error field key=value (repeatable)")
	cmd.Flags().StringVar(&contextJSON, "context", "", "context data as JSON")
	if err := cmd.MarkFlagRequired("message"); err != nil {
		diag := cliconfig.Logger()
		diag.Info().Err(err).Msg("failed to mark message flag required")
	}
	return cmd
}

// buildError returns the plain message, or an error object with message,
// stack and extra fields when a stack is available.
func buildError(message, stack string, capture bool, fields map[string]string) (any, error) {
	if capture && stack == "" {
		stack = log.NewTraced(message).Stack()
	}
	if stack == "" {
		if len(fields) > 0 {
			return nil, errors.New("--field requires --stack or --capture-stack")
		}
		return message, nil
	}

	errValue := map[string]any{
		"message": message,
		"stack":   stack,
	}
	for k, v := range fields {
		errValue[k] = parseValue(v)
	}
	return errValue, nil
}

func newPipeCommand(s *session) *cobra.Command {
	var (
		input  string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "pipe",
		Short: "Relay newline-delimited JSON records",
		Long: `Relay newline-delimited JSON records read from stdin or --input.

Each line is {"level":"info","args":[...]} or
{"level":"error","error":<value>,"context":<value>,"args":[...]}.`,
		Args: cobra.NoArgs,
		RunE: s.run(func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if input != "" && input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()
				in = f
			}

			diag := cliconfig.Logger()
			stats, err := relay.New(s.logger, diag).Run(cmd.Context(), in)
			diag.Debug().Int("emitted", stats.Emitted).Int("skipped", stats.Skipped).Msg("pipe finished")
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			if strict && stats.Skipped > 0 {
				return fmt.Errorf("%d record(s) skipped", stats.Skipped)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&input, "input", "-", "input file (- for stdin)")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any record is skipped")
	return cmd
}

func parseValues(args []string) []any {
	values := make([]any, 0, len(args))
	for _, a := range args {
		values = append(values, parseValue(a))
	}
	return values
}

// parseValue decodes s as JSON, falling back to the raw string.
func parseValue(s string) any {
	v, err := parseJSON(s)
	if err != nil {
		return s
	}
	return v
}

func parseJSON(s string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}
