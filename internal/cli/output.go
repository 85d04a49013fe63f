package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"golang.org/x/term"
)

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// writeJSON prints a payload to w: indented when stdout is a terminal,
// compact when piped.
func writeJSON(w io.Writer, payload []byte) error {
	pretty := true
	if f, ok := w.(*os.File); ok {
		pretty = isTerminal(f)
	}

	var buf bytes.Buffer
	if pretty {
		if err := json.Indent(&buf, payload, "", "  "); err != nil {
			buf.Reset()
			buf.Write(payload)
		}
	} else {
		buf.Write(payload)
	}
	buf.WriteByte('\n')

	_, err := w.Write(buf.Bytes())
	return err
}
