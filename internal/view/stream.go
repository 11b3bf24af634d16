package view

import (
	"fmt"
	"io"
	"runtime"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// Stream provides basic output operations. Results go to Writer, logs and
// progress to ErrWriter.
type Stream struct {
	Writer    io.Writer
	ErrWriter io.Writer
}

// NewStream creates a Stream. A nil errW shares w.
func NewStream(w, errW io.Writer) *Stream {
	if errW == nil {
		errW = w
	}

	return &Stream{Writer: w, ErrWriter: errW}
}

// Println writes arguments to the stream with a newline.
func (s *Stream) Println(args ...any) {
	fmt.Fprintln(s.Writer, args...)
}

// Printf writes formatted output to the stream.
func (s *Stream) Printf(fmtStr string, args ...any) {
	fmt.Fprintf(s.Writer, fmtStr, args...)
}

// PrintVersion writes version information to the stream.
func (s *Stream) PrintVersion() {
	fmt.Fprintf(s.Writer, "gen3utils version %s\n", Version)
	fmt.Fprintf(s.Writer, "%s/%s\n", runtime.GOOS, runtime.GOARCH)
}
