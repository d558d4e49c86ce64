// Package log normalizes error values and context data into consistent log
// writes with a derived severity.
//
// A Logger forwards every call to a Sink. Info calls pass through unchanged.
// Error calls inspect their first argument: values that expose a stack trace
// are classified, everything else is forwarded verbatim at error level.
//
// # Usage
//
// Use the provided zerolog sink:
//
//	logger := log.New(log.NewZerologSink(zerolog.New(os.Stderr)))
//	logger.Info("listening", log.Fields{"addr": addr})
//	logger.Error(log.Wrap(err), log.Fields{"httpCode": 404, "isHandledError": true})
//
// Or the no-op sink for testing:
//
//	logger := log.New(log.NewNoopSink())
//
// # Classification
//
// An error value qualifies as error-like when it exposes a non-empty trace,
// either through a Stack() string method, an exported Stack string field, or
// a "stack" entry in a string-keyed map. For error-like values the stack is
// logged as the message and a copy of the context map receives a fullError
// entry. Handled errors (isHandledError == true) with an httpCode below 500
// are downgraded to warn.
//
// # Custom Sinks
//
// Implement the Sink interface to route writes elsewhere:
//
//	type MySink struct { ... }
//
//	func (s *MySink) Write(level log.Level, values ...any) { ... }
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package log
