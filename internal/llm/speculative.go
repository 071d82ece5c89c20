// Speculative dispatch between an SLM and an LLM: four modes trading
// latency for quality, a shared abort-on-first-completion pattern for
// racing, and Welford stats updated after every call.
package llm

import (
	"context"
	"strings"
	"time"

	"github.com/vaak-ai/voxengine/internal/voxerr"
)

// Mode selects the speculative dispatch strategy.
type Mode string

const (
	// SlmFirst tries the SLM under a timeout, falling back to the LLM on
	// timeout, error, or insufficient quality. The default mode.
	SlmFirst Mode = "slm_first"

	// RaceParallel runs both models concurrently and accepts whichever
	// finishes first (subject to a quality check on the SLM).
	RaceParallel Mode = "race_parallel"

	// HybridStreaming streams from the SLM and switches to the LLM
	// mid-stream if early tokens look poor.
	HybridStreaming Mode = "hybrid_streaming"

	// DraftVerify is reserved: it always calls both models sequentially,
	// doubling latency, and must be explicitly opted into.
	DraftVerify Mode = "draft_verify"
)

// ModelUsed records which backend ultimately produced the surfaced text.
type ModelUsed string

const (
	UsedSlm    ModelUsed = "slm"
	UsedLlm    ModelUsed = "llm"
	UsedHybrid ModelUsed = "hybrid" // streamed from SLM then switched to LLM mid-stream
)

// Config tunes the speculative executor's thresholds.
type Config struct {
	Mode                  Mode
	ComplexityThreshold   float64
	SlmTimeout            time.Duration
	MinTokensBeforeSwitch int
	QualityThreshold      float64
	FallbackEnabled       bool
}

// DefaultConfig returns the default SpeculativeConfig settings.
func DefaultConfig() Config {
	return Config{
		Mode:                  SlmFirst,
		ComplexityThreshold:   0.7,
		SlmTimeout:            200 * time.Millisecond,
		MinTokensBeforeSwitch: 10,
		QualityThreshold:      0.8,
		FallbackEnabled:       true,
	}
}

// Result is the outcome of one speculative dispatch: exactly one final
// text surface, tagged with which model(s) produced it.
type Result struct {
	Text      string
	Used      ModelUsed
	FellBack  bool
	LatencyMs float64
}

// Executor dispatches generation requests between an SLM and an LLM
// according to Config.Mode.
type Executor struct {
	slm   Model
	llm   Model
	cfg   Config
	stats Stats
}

// NewExecutor builds a speculative executor over the given SLM/LLM pair.
func NewExecutor(slm, llm Model, cfg Config) *Executor {
	return &Executor{slm: slm, llm: llm, cfg: cfg}
}

// Stats returns a snapshot of accumulated call statistics.
func (e *Executor) Stats() Snapshot { return e.stats.Snapshot() }

// Execute dispatches req according to the executor's configured mode and
// returns exactly one final Result.
func (e *Executor) Execute(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	var res Result
	var err error

	switch e.cfg.Mode {
	case RaceParallel:
		res, err = e.executeRaceParallel(ctx, req)
	case HybridStreaming:
		res, err = e.executeHybridStreaming(ctx, req)
	case DraftVerify:
		res, err = e.executeDraftVerify(ctx, req)
	default:
		res, err = e.executeSlmFirst(ctx, req)
	}

	res.LatencyMs = float64(time.Since(start).Microseconds()) / 1000.0
	e.stats.record(res.LatencyMs, err == nil, res.FellBack)
	return res, err
}

func promptText(req Request) string {
	if len(req.Turns) == 0 {
		return ""
	}
	return req.Turns[len(req.Turns)-1].Content
}

// executeSlmFirst is the default mode: skip the SLM entirely for
// complex prompts, otherwise try it under a hard timeout and fall back
// to the LLM on timeout, error, or low-quality output.
func (e *Executor) executeSlmFirst(ctx context.Context, req Request) (Result, error) {
	if EstimateComplexity(promptText(req)) > e.cfg.ComplexityThreshold {
		return e.completeWith(ctx, e.llm, req, UsedLlm, false)
	}

	slmCtx, cancel := context.WithTimeout(ctx, e.cfg.SlmTimeout)
	resp, slmErr := e.slm.Complete(slmCtx, req)
	cancel()

	if !e.cfg.FallbackEnabled {
		if slmErr != nil {
			return Result{}, voxerr.New(voxerr.BackendUnavailable, "llm.executeSlmFirst", slmErr)
		}
		return Result{Text: resp.Text, Used: UsedSlm}, nil
	}

	if slmErr == nil && EstimateQuality(resp.Text) >= e.cfg.QualityThreshold {
		return Result{Text: resp.Text, Used: UsedSlm}, nil
	}

	return e.completeWith(ctx, e.llm, req, UsedLlm, true)
}

// raceOutcome carries one racing model's result back to the selector.
type raceOutcome struct {
	model ModelUsed
	resp  Response
	err   error
}

// executeRaceParallel spawns both models as cancellable goroutines and
// accepts whichever finishes first; the loser is cancelled via ctx.
func (e *Executor) executeRaceParallel(ctx context.Context, req Request) (Result, error) {
	slmCtx, cancelSlm := context.WithCancel(ctx)
	llmCtx, cancelLlm := context.WithCancel(ctx)
	defer cancelSlm()
	defer cancelLlm()

	results := make(chan raceOutcome, 2)
	go func() {
		resp, err := e.slm.Complete(slmCtx, req)
		results <- raceOutcome{model: UsedSlm, resp: resp, err: err}
	}()
	go func() {
		resp, err := e.llm.Complete(llmCtx, req)
		results <- raceOutcome{model: UsedLlm, resp: resp, err: err}
	}()

	first := <-results
	if first.model == UsedSlm {
		cancelLlm()
	} else {
		cancelSlm()
	}

	if first.err != nil || (first.model == UsedSlm && EstimateQuality(first.resp.Text) < e.cfg.QualityThreshold) {
		// The losing side (or only remaining side) was already cancelled;
		// re-issue to the LLM fresh since the earlier LLM task, if any,
		// was itself cancelled when the SLM arrived first.
		return e.completeWith(ctx, e.llm, req, UsedLlm, true)
	}

	return Result{Text: first.resp.Text, Used: first.model}, nil
}

// executeHybridStreaming streams from the SLM, evaluates quality after
// MinTokensBeforeSwitch chunks, and switches to an LLM stream mid-flight
// if the partial output looks poor. The caller observes a single
// monotonic stream via the returned Result's Text (already fully drained
// here, since Result carries a finished string, not a channel).
func (e *Executor) executeHybridStreaming(ctx context.Context, req Request) (Result, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	chunks, err := e.slm.StreamCompletion(streamCtx, req)
	if err != nil {
		return e.completeWith(ctx, e.llm, req, UsedLlm, true)
	}

	var b strings.Builder
	count := 0
	switched := false
	for c := range chunks {
		b.WriteString(c.Delta)
		count++
		if !switched && count >= e.cfg.MinTokensBeforeSwitch && EstimateQuality(b.String()) < e.cfg.QualityThreshold {
			cancel()
			switched = true
			break
		}
		if c.Done {
			return Result{Text: b.String(), Used: UsedSlm}, nil
		}
	}

	if !switched {
		return Result{Text: b.String(), Used: UsedSlm}, nil
	}

	llmResp, err := e.llm.Complete(ctx, req)
	if err != nil {
		return Result{}, voxerr.New(voxerr.BackendUnavailable, "llm.executeHybridStreaming", err)
	}
	return Result{Text: b.String() + llmResp.Text, Used: UsedHybrid, FellBack: true}, nil
}

// executeDraftVerify always calls the SLM, then completes with the LLM,
// doubling latency. The SLM draft is discarded and never shown to the
// LLM. Reserved: callers must opt in explicitly.
func (e *Executor) executeDraftVerify(ctx context.Context, req Request) (Result, error) {
	_, _ = e.slm.Complete(ctx, req) // draft; its result is discarded
	return e.completeWith(ctx, e.llm, req, UsedLlm, false)
}

func (e *Executor) completeWith(ctx context.Context, m Model, req Request, used ModelUsed, fellBack bool) (Result, error) {
	resp, err := m.Complete(ctx, req)
	if err != nil {
		return Result{}, voxerr.New(voxerr.BackendUnavailable, "llm.completeWith", err)
	}
	return Result{Text: resp.Text, Used: used, FellBack: fellBack}, nil
}
