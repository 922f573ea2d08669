package sensor

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"
)

// ReplaySource plays back sensor events recorded as JSON lines, one Event
// per line, at a fixed frame interval.
type ReplaySource struct {
	events   chan Event
	done     chan struct{}
	once     sync.Once
	interval time.Duration
}

// NewReplaySource starts playing back r. An interval of zero delivers the
// recording as fast as the consumer reads it.
func NewReplaySource(r io.Reader, interval time.Duration) *ReplaySource {
	s := &ReplaySource{
		events:   make(chan Event),
		done:     make(chan struct{}),
		interval: interval,
	}
	go s.play(r)
	return s
}

// ParseRecording decodes a complete JSON lines recording.
func ParseRecording(r io.Reader) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}
	return events, nil
}

func (s *ReplaySource) play(r io.Reader) {
	defer close(s.events)

	events, err := ParseRecording(r)
	if err != nil {
		log.Printf("replay: %v", err)
		return
	}

	var tick <-chan time.Time
	if s.interval > 0 {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for _, ev := range events {
		if tick != nil {
			select {
			case <-tick:
			case <-s.done:
				return
			}
		}
		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
	}
}

// Events returns the event channel. It is closed at the end of the recording.
func (s *ReplaySource) Events() <-chan Event {
	return s.events
}

// Close stops playback.
func (s *ReplaySource) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}
