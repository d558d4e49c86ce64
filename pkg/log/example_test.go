package log_test

import (
	"fmt"
	"strings"

	"github.com/bft-labs/errlog/pkg/log"
)

// printSink prints the level and the first line of each value.
type printSink struct{}

func (printSink) Write(level log.Level, values ...any) {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		s := fmt.Sprint(v)
		if m, ok := v.(log.Fields); ok {
			s = fmt.Sprintf("fullError=%v httpCode=%v", m["fullError"], m["httpCode"])
		}
		first, _, _ := strings.Cut(s, "\n")
		parts = append(parts, first)
	}
	fmt.Println(level, strings.Join(parts, " | "))
}

// ExampleLogger_Error shows how a handled client error is downgraded.
func ExampleLogger_Error() {
	logger := log.New(printSink{})

	err := log.NewTraced("user not found")
	logger.Error(err, log.Fields{"httpCode": 404, "isHandledError": true})
	logger.Error(err, log.Fields{"httpCode": 503, "isHandledError": true})
	logger.Error("not an error", "passed", "through")

	// Output:
	// warn user not found | fullError=user not found httpCode=404
	// error user not found | fullError=user not found httpCode=503
	// error not an error | passed | through
}

// ExampleLogger_Info shows that info writes are forwarded verbatim.
func ExampleLogger_Info() {
	logger := log.New(printSink{})
	logger.Info("ready", 1, true)

	// Output:
	// info ready | 1 | true
}
