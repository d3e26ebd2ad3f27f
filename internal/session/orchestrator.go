package session

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const framesPerProgressLog = 20

// Orchestrator owns one session's streaming phase. The transport adapter
// drives the ingestion side by calling HandleAudio and Stop from its read
// loop; Start launches the single background analysis cycle. The two
// activities share the session state behind its locks and never block each
// other: ingestion only appends to the audio buffer, the cycle only drains
// it.
type Orchestrator struct {
	sess   *Session
	gw     Gateway
	emit   EventEmitter
	policy CadencePolicy
	obs    CycleObserver
	logger *slog.Logger
	now    func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
	frames atomic.Int64
}

// NewOrchestrator wires an orchestrator for one session. obs may be nil.
func NewOrchestrator(sess *Session, gw Gateway, emit EventEmitter, policy CadencePolicy, obs CycleObserver, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		sess:   sess,
		gw:     gw,
		emit:   emit,
		policy: policy,
		obs:    obs,
		logger: logger.With("session_id", sess.ID),
		now:    time.Now,
		done:   make(chan struct{}),
	}
}

// Start activates the session and launches the analysis cycle. It fails
// with ErrAlreadyStreaming if the session already has a live orchestrator.
func (o *Orchestrator) Start(ctx context.Context) error {
	if err := o.sess.Activate(); err != nil {
		return err
	}
	ctx, o.cancel = context.WithCancel(ctx)
	go o.run(ctx)
	return nil
}

// HandleAudio appends one inbound binary frame to the session buffer.
// No audio-content validation happens here; format handling is the
// gateway's concern.
func (o *Orchestrator) HandleAudio(frame []byte) {
	o.sess.AppendAudio(frame)
	if n := o.frames.Add(1); n%framesPerProgressLog == 0 {
		o.logger.Debug("audio frames received", "frames", n, "buffered_bytes", o.sess.BufferedBytes())
	}
}

// Stop deactivates the session and cancels the analysis cycle. Explicit
// stop, client disconnect, and transport errors all land here; no
// distinction is surfaced to the client. Stop is idempotent.
func (o *Orchestrator) Stop() {
	o.sess.ReleaseStream()
	if o.cancel != nil {
		o.cancel()
	}
}

// Done is closed once the analysis cycle has fully wound down.
func (o *Orchestrator) Done() <-chan struct{} {
	return o.done
}

func (o *Orchestrator) run(ctx context.Context) {
	defer close(o.done)

	ticker := time.NewTicker(o.policy.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !o.sess.Active() {
				return
			}
			o.cycle(ctx)
		}
	}
}

// cycle is one wake of the analysis activity. Every failure is captured
// here and swallowed: a failed iteration must never terminate the session
// or leak into the ingestion loop.
func (o *Orchestrator) cycle(ctx context.Context) {
	chunk := o.sess.DrainAudio(o.policy.MinBufferBytes)
	if chunk == nil {
		return
	}

	o.logger.Debug("processing audio buffer", "bytes", len(chunk))

	text, err := o.gw.Transcribe(ctx, chunk, transcriptionPrompt(o.sess.Profile))
	if err != nil {
		o.cycleError("transcribe", err)
		return
	}
	if text == "" {
		return
	}
	if !o.sess.Active() {
		// Deactivated while the call was in flight; discard the result.
		return
	}

	now := o.now()
	entry := o.sess.AddUserEntry(text, now)
	o.emit.Transcript(entry)
	if o.obs != nil {
		o.obs.TranscriptionProcessed(len(chunk))
	}

	if !o.policy.ShouldSuggest(now, o.sess.LastSuggestionAt(), o.sess.HistoryLen()) {
		return
	}
	o.suggest(ctx)
}

func (o *Orchestrator) suggest(ctx context.Context) {
	recent := o.sess.RecentHistory(o.policy.HistoryWindow)

	text, err := o.gw.Suggest(ctx, o.sess.Profile, recent)
	if err != nil {
		o.cycleError("suggest", err)
		return
	}
	if !o.sess.Active() {
		return
	}

	now := o.now()
	o.sess.AddCoachEntry(text, now)
	o.emit.Suggestion(text, now)
	if o.obs != nil {
		o.obs.SuggestionEmitted()
	}

	// Synthesis failure must not undo the suggestion: the text is already
	// delivered and the suggestion clock advances either way.
	if speech, err := o.gw.Synthesize(ctx, text); err != nil {
		o.cycleError("synthesize", err)
	} else if o.sess.Active() {
		o.emit.Audio(speech.Data, speech.Format)
	}

	o.sess.MarkSuggested(o.now())
}

func (o *Orchestrator) cycleError(stage string, err error) {
	o.logger.Error("analysis cycle error", "stage", stage, "error", err)
	if o.obs != nil {
		o.obs.CycleError(stage)
	}
}

// transcriptionPrompt biases recognition toward the conversation's context
// and goal.
func transcriptionPrompt(p Profile) string {
	switch {
	case p.Context != "" && p.Goal != "":
		return "Context: " + p.Context + ". Goal: " + p.Goal + "."
	case p.Context != "":
		return "Context: " + p.Context + "."
	case p.Goal != "":
		return "Goal: " + p.Goal + "."
	default:
		return ""
	}
}
