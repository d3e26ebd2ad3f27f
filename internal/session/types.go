package session

import (
	"context"
	"time"
)

// Speaker labels for transcript entries.
const (
	SpeakerUser  = "user"
	SpeakerCoach = "coach"
)

// Profile holds the immutable description of a coaching conversation,
// captured at session creation.
type Profile struct {
	UserName     string `json:"user_name"`
	Context      string `json:"context"`
	Goal         string `json:"goal"`
	Participants string `json:"participants,omitempty"`
	Tone         string `json:"tone,omitempty"`
}

// Entry is a single transcript line. The transcript is append-only and is
// the durable record of the session.
type Entry struct {
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Exchange is a {role, content} pair derived from transcript entries, used
// only as rolling context for suggestion generation.
type Exchange struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Summary is the structured result of the session-analysis capability.
type Summary struct {
	Stars            []string `json:"stars"`
	Wish             string   `json:"wish"`
	FillerPercentage float64  `json:"filler_percentage"`
	Takeaways        []string `json:"takeaways"`
	SummaryBullets   []string `json:"summary_bullets"`
}

// Report is what finalize hands back to the caller: the analysis result
// verbatim plus the full transcript.
type Report struct {
	Summary
	Transcript []Entry `json:"transcript"`
}

// SpeechAudio is synthesized speech returned by the gateway.
type SpeechAudio struct {
	Data   []byte
	Format string
}

// Gateway is the external speech/language capability boundary. Every call
// is fallible and latency-bearing; implementations live outside this
// package.
type Gateway interface {
	Transcribe(ctx context.Context, audio []byte, prompt string) (string, error)
	Suggest(ctx context.Context, profile Profile, recent []Exchange) (string, error)
	Synthesize(ctx context.Context, text string) (SpeechAudio, error)
	Analyze(ctx context.Context, profile Profile, transcript string) (Summary, error)
}

// EventEmitter delivers outbound frames to the connected client.
type EventEmitter interface {
	Transcript(entry Entry)
	Suggestion(text string, at time.Time)
	Audio(data []byte, format string)
}

// CycleObserver receives per-iteration signals from the analysis cycle.
// Implementations must be safe for concurrent use.
type CycleObserver interface {
	TranscriptionProcessed(bytes int)
	SuggestionEmitted()
	CycleError(stage string)
}
