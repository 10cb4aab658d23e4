package elf

import (
	"fmt"
	"os"

	"github.com/xyproto/env/v2"
)

// Logger receives diagnostic traces from the parser and editor. Callers
// that don't supply one via WithLogger get defaultLogger, which is
// silent unless ZWOELF_VERBOSE is set.
type Logger interface {
	Logf(format string, args ...any)
}

// VerboseMode is a package-level toggle read once from the environment
// at init rather than parsed from CLI flags, since this is a library,
// not a command.
var VerboseMode = env.Bool("ZWOELF_VERBOSE")

type stderrLogger struct{}

func (stderrLogger) Logf(format string, args ...any) {
	if !VerboseMode {
		return
	}
	fmt.Fprintf(os.Stderr, "zwoelf: "+format+"\n", args...)
}

// DiscardLogger drops every trace. Pass it to WithLogger to silence
// diagnostics even when ZWOELF_VERBOSE is set.
type DiscardLogger struct{}

// Logf implements Logger by discarding its arguments.
func (DiscardLogger) Logf(string, ...any) {}

func defaultLogger() Logger {
	return stderrLogger{}
}
