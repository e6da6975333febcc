package main

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger returns the progress logger. Results go to stdout; everything
// else goes through here.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "cruncher",
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	}
	return l
}
