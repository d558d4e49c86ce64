package log

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shapeError has the fields of an error object decoded from another runtime.
type shapeError struct {
	Message string
	Stack   string
	Code    string `json:"code"`
	Hidden  string `json:"-"`
	private string
}

// renamedError keeps its message and stack under other JSON keys.
type renamedError struct {
	Message string `json:"msg"`
	Stack   string `json:"trace"`
	Code    int    `json:"code"`
}

// chainError links to the next error in a chain; the last one points to itself.
type chainError struct {
	*chainError
	Stack string
	Code  int `json:"code"`
}

// tracedMap reports an empty trace through its method.
type tracedMap map[string]any

func (tracedMap) Stack() string { return "" }

type detailedError struct {
	*TracedError
	Resource string `json:"resource"`
	Attempts int
}

func TestClassify_NotErrorLike(t *testing.T) {
	tests := []struct {
		name string
		err  any
	}{
		{name: "nil", err: nil},
		{name: "number", err: 42},
		{name: "string", err: "oops"},
		{name: "plain go error", err: errors.New("no trace")},
		{name: "struct with empty stack", err: shapeError{Message: "m"}},
		{name: "map without stack", err: map[string]any{"message": "m"}},
		{name: "map with non-string stack", err: map[string]any{"stack": 1}},
		{name: "nil traced error", err: (*TracedError)(nil)},
		{name: "zero traced error", err: &TracedError{msg: "x"}},
		{name: "custom error with nil base", err: &detailedError{Resource: "r"}},
	}

	ctx := Fields{"isHandledError": true, "httpCode": 404}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.err, ctx)
			assert.Equal(t, LevelError, c.Level)
			assert.Equal(t, tt.err, c.Representation)
			assert.Equal(t, ctx, c.Context)
		})
	}
}

func TestClassify_NonMappingContext(t *testing.T) {
	err := NewTraced("boom")
	var nilMap map[string]any

	tests := []struct {
		name string
		ctx  any
	}{
		{name: "nil", ctx: nil},
		{name: "bool", ctx: true},
		{name: "number", ctx: 7},
		{name: "string", ctx: "context"},
		{name: "slice", ctx: []any{1, 2}},
		{name: "struct", ctx: struct{ HTTPCode int }{HTTPCode: 404}},
		{name: "typed nil map", ctx: nilMap},
		{name: "int keyed map", ctx: map[int]any{1: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(err, tt.ctx)
			assert.Equal(t, LevelError, c.Level)
			assert.Equal(t, err.Stack(), c.Representation)
			assert.Equal(t, tt.ctx, c.Context)
		})
	}
}

func TestClassify_Severity(t *testing.T) {
	err := NewTraced("boom")

	tests := []struct {
		name string
		ctx  Fields
		want Level
	}{
		{name: "empty", ctx: Fields{}, want: LevelError},
		{name: "http code only", ctx: Fields{"httpCode": 400}, want: LevelError},
		{name: "handled without code", ctx: Fields{"isHandledError": true}, want: LevelError},
		{name: "handled 403", ctx: Fields{"isHandledError": true, "httpCode": 403}, want: LevelWarn},
		{name: "handled 499", ctx: Fields{"isHandledError": true, "httpCode": 499}, want: LevelWarn},
		{name: "handled 500", ctx: Fields{"isHandledError": true, "httpCode": 500}, want: LevelError},
		{name: "handled 502", ctx: Fields{"isHandledError": true, "httpCode": 502}, want: LevelError},
		{name: "unhandled 404", ctx: Fields{"isHandledError": false, "httpCode": 404}, want: LevelError},
		{name: "handled flag as string", ctx: Fields{"isHandledError": "true", "httpCode": 404}, want: LevelError},
		{name: "code as string", ctx: Fields{"isHandledError": true, "httpCode": "404"}, want: LevelError},
		{name: "code as nil", ctx: Fields{"isHandledError": true, "httpCode": nil}, want: LevelError},
		{name: "code as float", ctx: Fields{"isHandledError": true, "httpCode": 404.0}, want: LevelWarn},
		{name: "code as uint16", ctx: Fields{"isHandledError": true, "httpCode": uint16(409)}, want: LevelWarn},
		{name: "code as json number", ctx: Fields{"isHandledError": true, "httpCode": json.Number("429")}, want: LevelWarn},
		{name: "code as bad json number", ctx: Fields{"isHandledError": true, "httpCode": json.Number("x")}, want: LevelError},
		{name: "negative code", ctx: Fields{"isHandledError": true, "httpCode": -1}, want: LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(err, tt.ctx).Level)
		})
	}
}

func TestClassify_FullError(t *testing.T) {
	traced := NewTraced("boom")
	override := errors.New("caller supplied")

	detailed := &detailedError{TracedError: NewTraced("missing"), Resource: "user", Attempts: 2}
	wrapped := Wrap(override)

	tests := []struct {
		name string
		err  any
		ctx  any
		want any
	}{
		{
			name: "raw error without extras",
			err:  traced,
			ctx:  Fields{},
			want: traced,
		},
		{
			name: "caller override wins",
			err:  traced,
			ctx:  Fields{"fullError": override},
			want: override,
		},
		{
			name: "caller nil override wins",
			err:  traced,
			ctx:  Fields{"fullError": nil},
			want: nil,
		},
		{
			name: "embedded base contributes nothing",
			err:  detailed,
			ctx:  Fields{},
			want: Fields{"resource": "user", "Attempts": 2},
		},
		{
			name: "struct shape excludes message and stack",
			err:  shapeError{Message: "m", Stack: "trace", Code: "E1", Hidden: "h", private: "p"},
			ctx:  Fields{},
			want: Fields{"code": "E1"},
		},
		{
			name: "renamed message and stack are excluded",
			err:  &renamedError{Message: "m", Stack: "Error: m\n  at f", Code: 7},
			ctx:  Fields{},
			want: Fields{"code": 7},
		},
		{
			name: "map shape excludes message and stack",
			err:  map[string]any{"message": "m", "stack": "trace", "customField": "x"},
			ctx:  Fields{},
			want: Fields{"customField": "x"},
		},
		{
			name: "wrapped plain error",
			err:  wrapped,
			ctx:  map[string]string{"k": "v"},
			want: wrapped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.err, tt.ctx)
			merged, ok := c.Context.(Fields)
			require.True(t, ok, "context should be merged into a new map")
			got, exists := merged[FieldFullError]
			require.True(t, exists)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_SelfLinkedError(t *testing.T) {
	e := &chainError{Stack: "s", Code: 3}
	e.chainError = e

	c := Classify(e, Fields{})
	assert.Equal(t, LevelError, c.Level)
	assert.Equal(t, "s", c.Representation)
	assert.Equal(t, Fields{"code": 3}, c.Context.(Fields)[FieldFullError])

	inner := &chainError{Stack: "inner", Code: 1}
	inner.chainError = inner
	outer := &chainError{chainError: inner, Stack: "outer", Code: 2}

	c = Classify(outer, Fields{})
	assert.Equal(t, "outer", c.Representation)
	assert.Equal(t, Fields{"code": 2}, c.Context.(Fields)[FieldFullError])
}

func TestClassify_ConvertsStringKeyedMaps(t *testing.T) {
	err := NewTraced("boom")
	ctx := map[string]string{"k": "v"}

	c := Classify(err, ctx)
	assert.Equal(t, Fields{"k": "v", "fullError": err}, c.Context)
	assert.Equal(t, map[string]string{"k": "v"}, ctx)
}

func TestClassify_Representation(t *testing.T) {
	t.Run("tracer", func(t *testing.T) {
		err := NewTraced("boom")
		c := Classify(err, nil)
		assert.Equal(t, err.Stack(), c.Representation)
		assert.Contains(t, c.Representation, "boom\n")
	})

	t.Run("struct field", func(t *testing.T) {
		c := Classify(&shapeError{Stack: "Error: x\n    at f"}, nil)
		assert.Equal(t, "Error: x\n    at f", c.Representation)
	})

	t.Run("map entry", func(t *testing.T) {
		c := Classify(map[string]string{"stack": "trace"}, nil)
		assert.Equal(t, "trace", c.Representation)
	})
}

func TestClassify_Pure(t *testing.T) {
	err := &detailedError{TracedError: NewTraced("x"), Resource: "r"}
	ctx := Fields{"httpCode": 404, "isHandledError": true, "nested": Fields{"a": 1}}
	snapshot := Fields{"httpCode": 404, "isHandledError": true, "nested": Fields{"a": 1}}

	first := Classify(err, ctx)
	second := Classify(err, ctx)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, ctx)
	assert.Equal(t, "r", err.Resource)

	merged := first.Context.(Fields)
	merged["extra"] = true
	assert.NotContains(t, ctx, "extra")
}

func TestHasTrace(t *testing.T) {
	assert.True(t, HasTrace(NewTraced("x")))
	assert.True(t, HasTrace(Wrap(errors.New("x"))))
	assert.True(t, HasTrace(map[string]any{"stack": "s"}))
	assert.True(t, HasTrace(struct{ Stack string }{Stack: "s"}))
	assert.False(t, HasTrace(struct{ stack string }{stack: "s"}))
	assert.False(t, HasTrace(errors.New("x")))
	assert.False(t, HasTrace(nil))

	assert.True(t, HasTrace(tracedMap{"stack": "s"}))
	assert.False(t, HasTrace(tracedMap{}))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil))

	base := errors.New("base")
	wrapped := Wrap(base)
	assert.Equal(t, "base", wrapped.Error())
	assert.ErrorIs(t, wrapped, base)

	assert.Same(t, wrapped, Wrap(wrapped))
}
