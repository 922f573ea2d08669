// Package control runs the control channel through which an external
// controller toggles speech output.
package control

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
)

// Commands understood by the server. Each is sent as one line.
const (
	CmdStart = "<START>"
	CmdStop  = "<STOP>"
	CmdClose = "<CLOSE>"
)

// EndpointName is the well-known name of the control endpoint.
const EndpointName = "APPCALLBACK"

// DefaultAddress returns the default Unix socket path of the endpoint.
func DefaultAddress() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, EndpointName)
}

// ValidCommand reports whether line is one of the protocol commands.
func ValidCommand(line string) bool {
	switch line {
	case CmdStart, CmdStop, CmdClose:
		return true
	}
	return false
}

// MaxLineLength bounds a control line. Longer lines are discarded whole.
const MaxLineLength = 4096

// errLineTooLong is returned by readLine for a discarded line.
var errLineTooLong = errors.New("control: line too long")

// readLine reads one line without its "\n" or "\r\n" ending. A final line
// without a newline is returned before io.EOF. Lines longer than
// MaxLineLength are consumed up to their newline and reported as
// errLineTooLong, leaving r positioned at the next line.
func readLine(r *bufio.Reader) (string, error) {
	var line []byte
	n := 0
	for {
		chunk, err := r.ReadSlice('\n')
		n += len(chunk)
		if n <= MaxLineLength {
			line = append(line, chunk...)
		}

		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil && (!errors.Is(err, io.EOF) || n == 0) {
			return "", err
		}
		break
	}

	if n > MaxLineLength {
		return "", errLineTooLong
	}
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return string(line), nil
}
