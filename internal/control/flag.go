package control

import "sync/atomic"

// SpeakFlag tells the rest of the process whether speech output is
// currently permitted. The zero value is false.
type SpeakFlag struct {
	v atomic.Bool
}

// Active reports the latest value written.
func (f *SpeakFlag) Active() bool {
	return f.v.Load()
}

func (f *SpeakFlag) set(active bool) {
	f.v.Store(active)
}
