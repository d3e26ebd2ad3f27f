package session

import "sync"

// AudioBuffer accumulates raw PCM bytes from the ingestion loop until the
// analysis cycle drains them. Append and Drain are safe to call from
// different goroutines; Drain's threshold check, detach, and reset happen
// under one lock so a concurrent Append can never be lost between them.
type AudioBuffer struct {
	mu   sync.Mutex
	data []byte
}

// NewAudioBuffer creates an empty audio buffer.
func NewAudioBuffer() *AudioBuffer {
	return &AudioBuffer{}
}

// Append adds a received audio frame to the buffer.
func (b *AudioBuffer) Append(frame []byte) {
	b.mu.Lock()
	b.data = append(b.data, frame...)
	b.mu.Unlock()
}

// Drain detaches and returns the accumulated bytes if more than min bytes
// are buffered, resetting the buffer to empty. At or below the threshold it
// returns nil and leaves the buffer untouched.
func (b *AudioBuffer) Drain(min int) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.data) <= min {
		return nil
	}
	out := b.data
	b.data = nil
	return out
}

// Len returns the number of buffered bytes.
func (b *AudioBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}
