package session

import (
	"strings"
	"sync"
	"time"
)

// Session is the mutable state of one coaching conversation. Two
// concurrent activities share it while a connection is live: the ingestion
// loop appends audio, and the analysis cycle drains audio and appends
// transcript entries. All mutation goes through methods that hold the
// session mutex; the audio buffer carries its own lock so appends never
// contend with transcript reads.
type Session struct {
	ID        string
	Profile   Profile
	CreatedAt time.Time

	buffer *AudioBuffer

	mu                 sync.Mutex
	transcript         []Entry
	history            []Exchange
	lastSuggestionTime time.Time
	active             bool
	streaming          bool
}

func newSession(id string, profile Profile, now time.Time) *Session {
	return &Session{
		ID:                 id,
		Profile:            profile,
		CreatedAt:          now,
		buffer:             NewAudioBuffer(),
		lastSuggestionTime: now,
	}
}

// Activate marks the session live and claims its single ingestion loop.
// It fails with ErrAlreadyStreaming if another connection already owns the
// session.
func (s *Session) Activate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.streaming {
		return ErrAlreadyStreaming
	}
	s.streaming = true
	s.active = true
	return nil
}

// Deactivate transitions the session to inactive. Deactivating an already
// inactive session is a no-op, not an error.
func (s *Session) Deactivate() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// ReleaseStream gives up the ingestion-loop claim so the session could be
// re-inspected; the session stays inactive.
func (s *Session) ReleaseStream() {
	s.mu.Lock()
	s.active = false
	s.streaming = false
	s.mu.Unlock()
}

// Active reports whether the session is accepting audio and emitting
// events.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// AppendAudio adds an inbound audio frame to the buffer. Frames received
// after deactivation are dropped.
func (s *Session) AppendAudio(frame []byte) {
	if !s.Active() {
		return
	}
	s.buffer.Append(frame)
}

// DrainAudio atomically detaches the buffered audio if more than min bytes
// have accumulated. See AudioBuffer.Drain.
func (s *Session) DrainAudio(min int) []byte {
	return s.buffer.Drain(min)
}

// BufferedBytes returns how much undrained audio the session holds.
func (s *Session) BufferedBytes() int {
	return s.buffer.Len()
}

// AddUserEntry appends a user transcript entry and the matching
// conversation-history exchange, returning the entry.
func (s *Session) AddUserEntry(text string, now time.Time) Entry {
	return s.addEntry(SpeakerUser, "user", text, now)
}

// AddCoachEntry appends a coach transcript entry and the matching
// conversation-history exchange, returning the entry.
func (s *Session) AddCoachEntry(text string, now time.Time) Entry {
	return s.addEntry(SpeakerCoach, "assistant", text, now)
}

func (s *Session) addEntry(speaker, role, text string, now time.Time) Entry {
	entry := Entry{Speaker: speaker, Text: text, Timestamp: now.UTC()}
	s.mu.Lock()
	s.transcript = append(s.transcript, entry)
	s.history = append(s.history, Exchange{Role: role, Content: text})
	s.mu.Unlock()
	return entry
}

// Transcript returns a copy of the transcript in order.
func (s *Session) Transcript() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.transcript) == 0 {
		return nil
	}
	return append([]Entry(nil), s.transcript...)
}

// HistoryLen returns the number of conversation-history exchanges.
func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// RecentHistory returns a copy of the last n conversation-history
// exchanges. Older context is deliberately dropped to bound prompt size and
// keep suggestions reactive to recent speech.
func (s *Session) RecentHistory(n int) []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return nil
	}
	start := len(s.history) - n
	if start < 0 {
		start = 0
	}
	return append([]Exchange(nil), s.history[start:]...)
}

// LastSuggestionAt returns the time of the last emitted suggestion, which
// is the creation time until the first one fires.
func (s *Session) LastSuggestionAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSuggestionTime
}

// MarkSuggested advances the suggestion clock. Called exactly once per
// triggered suggestion, synthesis outcome notwithstanding.
func (s *Session) MarkSuggested(now time.Time) {
	s.mu.Lock()
	s.lastSuggestionTime = now
	s.mu.Unlock()
}

// TranscriptText serializes the full transcript into the block handed to
// the analysis capability, one "[timestamp] speaker: text" line per entry.
func (s *Session) TranscriptText() string {
	entries := s.Transcript()
	var b strings.Builder
	for _, e := range entries {
		b.WriteString("[")
		b.WriteString(e.Timestamp.Format(time.RFC3339))
		b.WriteString("] ")
		b.WriteString(e.Speaker)
		b.WriteString(": ")
		b.WriteString(e.Text)
		b.WriteString("\n")
	}
	return b.String()
}
