// Package fixtures provides recorded sensor sessions for tests.
package fixtures

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/ayusman/gesturemodality/internal/sensor"
)

//go:embed recordings/*.jsonl
var recordingsFS embed.FS

// OpenRecording opens a recording by name (without extension).
func OpenRecording(name string) (fs.File, error) {
	f, err := recordingsFS.Open("recordings/" + name + ".jsonl")
	if err != nil {
		return nil, fmt.Errorf("open recording %s: %w", name, err)
	}
	return f, nil
}

// LoadRecording decodes a recording by name (without extension).
func LoadRecording(name string) ([]sensor.Event, error) {
	f, err := OpenRecording(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	events, err := sensor.ParseRecording(f)
	if err != nil {
		return nil, fmt.Errorf("parse recording %s: %w", name, err)
	}
	return events, nil
}

// Recordings lists the available recordings.
func Recordings() ([]string, error) {
	entries, err := recordingsFS.ReadDir("recordings")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		names = append(names, name[:len(name)-len(".jsonl")])
	}
	return names, nil
}
