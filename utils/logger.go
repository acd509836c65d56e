package utils

import (
	"fmt"
	"io"
)

// Logger is a nil-safe sink for per-decode trace logs.
// A nil *Logger silently drops everything written to it.
type Logger struct {
	io.Writer
}

func (l *Logger) Println(a ...interface{}) {
	if l != nil {
		fmt.Fprintln(l, a...)
	}
}

func (l *Logger) Printf(format string, a ...interface{}) {
	if l != nil {
		fmt.Fprintf(l, format+"\n", a...)
	}
}
