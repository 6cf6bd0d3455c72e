// Package testutil holds helpers shared by sqlsession tests.
package testutil

import (
	"bytes"
	"io"
	"os"
)

// StdoutOutputForFunc runs f with os.Stdout redirected and returns everything written to it.
// Loggers must be constructed inside f to pick up the redirected stream.
func StdoutOutputForFunc(f func()) string {
	return captureOutput(&os.Stdout, f)
}

// StderrOutputForFunc is StdoutOutputForFunc for os.Stderr.
func StderrOutputForFunc(f func()) string {
	return captureOutput(&os.Stderr, f)
}

func captureOutput(target **os.File, f func()) string {
	old := *target

	r, w, err := os.Pipe()
	if err != nil {
		panic(err)
	}

	*target = w

	done := make(chan string)

	go func() {
		var buf bytes.Buffer

		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	defer func() {
		*target = old
	}()

	f()

	_ = w.Close()

	out := <-done
	_ = r.Close()

	return out
}
