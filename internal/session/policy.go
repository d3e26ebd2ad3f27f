package session

import "time"

// Default cadence values: poll every 3s, transcribe once more than one
// second of 16kHz 16-bit mono PCM has accumulated, and throttle coaching
// suggestions to at most one per 8s once two exchanges exist.
const (
	DefaultPollInterval       = 3 * time.Second
	DefaultMinBufferBytes     = 16000 * 2
	DefaultSuggestionInterval = 8 * time.Second
	DefaultMinHistory         = 2
	DefaultHistoryWindow      = 6
)

// CadencePolicy holds the two independent triggers that govern the analysis
// cycle. The transcription trigger is a buffer-size threshold checked every
// poll; the suggestion trigger is a time-since-last-suggestion threshold
// plus a minimum history length, checked only after a successful non-empty
// transcription. The two must not be conflated: transcription is
// latency-sensitive, coaching output is deliberately throttled.
type CadencePolicy struct {
	PollInterval       time.Duration
	MinBufferBytes     int
	SuggestionInterval time.Duration
	MinHistory         int
	HistoryWindow      int
}

// DefaultPolicy returns the standard cadence policy.
func DefaultPolicy() CadencePolicy {
	return CadencePolicy{
		PollInterval:       DefaultPollInterval,
		MinBufferBytes:     DefaultMinBufferBytes,
		SuggestionInterval: DefaultSuggestionInterval,
		MinHistory:         DefaultMinHistory,
		HistoryWindow:      DefaultHistoryWindow,
	}
}

// ShouldSuggest reports whether a coaching suggestion may fire now, given
// the time of the last suggestion and the current history length.
func (p CadencePolicy) ShouldSuggest(now, lastSuggestion time.Time, historyLen int) bool {
	if historyLen < p.MinHistory {
		return false
	}
	return now.Sub(lastSuggestion) >= p.SuggestionInterval
}
