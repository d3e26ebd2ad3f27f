package session

import (
	"context"
	"fmt"
	"strings"
)

// defaultSummary is the fixed result for sessions that ended before any
// conversation was recorded. This is a defined success path, not an error.
func defaultSummary() Summary {
	return Summary{
		Stars: []string{"Started the session", "Ready to practice"},
		Wish:  "Have a longer conversation to get more feedback",
		Takeaways: []string{
			"Practice makes perfect",
			"Try again with a real conversation",
			"Focus on your goals",
		},
		SummaryBullets: []string{"Session started but no conversation recorded"},
	}
}

// Finalize deactivates the session and produces its structured summary.
// Deactivation happens first and is idempotent; the analysis capability is
// only consulted when the transcript carries actual text. Capability
// failures and malformed results surface as an analysis error, wrapped
// around ErrAnalysis.
func Finalize(ctx context.Context, sess *Session, gw Gateway) (Report, error) {
	sess.Deactivate()

	transcript := sess.Transcript()
	if emptyTranscript(transcript) {
		return Report{Summary: defaultSummary(), Transcript: transcript}, nil
	}

	summary, err := gw.Analyze(ctx, sess.Profile, sess.TranscriptText())
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrAnalysis, err)
	}
	if err := validateSummary(summary); err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrAnalysis, err)
	}

	return Report{Summary: summary, Transcript: transcript}, nil
}

func emptyTranscript(entries []Entry) bool {
	for _, e := range entries {
		if strings.TrimSpace(e.Text) != "" {
			return false
		}
	}
	return true
}

// validateSummary enforces the analysis contract: two stars, one wish, a
// filler percentage within 0-100, three takeaways, and three to five
// summary bullets. A response missing any of these is a finalize failure,
// never silently patched.
func validateSummary(s Summary) error {
	if len(s.Stars) != 2 {
		return fmt.Errorf("expected 2 stars, got %d", len(s.Stars))
	}
	if strings.TrimSpace(s.Wish) == "" {
		return fmt.Errorf("missing wish")
	}
	if s.FillerPercentage < 0 || s.FillerPercentage > 100 {
		return fmt.Errorf("filler percentage %.1f out of range", s.FillerPercentage)
	}
	if len(s.Takeaways) != 3 {
		return fmt.Errorf("expected 3 takeaways, got %d", len(s.Takeaways))
	}
	if len(s.SummaryBullets) < 3 || len(s.SummaryBullets) > 5 {
		return fmt.Errorf("expected 3-5 summary bullets, got %d", len(s.SummaryBullets))
	}
	return nil
}
