package llm

import (
	"context"
	"time"
)

// fakeModel is a scriptable Model test double: configurable
// delay/response/error, with StreamCompletion chunking a fixed string
// into chunkLen-rune deltas (one rune each when chunkLen is 0).
type fakeModel struct {
	name     string
	text     string
	err      error
	delay    time.Duration
	chunkLen int
}

func (f *fakeModel) Complete(ctx context.Context, req Request) (Response, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return Response{}, ctx.Err()
		}
	}
	if f.err != nil {
		return Response{}, f.err
	}
	return Response{Text: f.text}, nil
}

func (f *fakeModel) StreamCompletion(ctx context.Context, req Request) (<-chan Chunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(chan Chunk)
	chunkLen := f.chunkLen
	if chunkLen == 0 {
		chunkLen = 1
	}
	go func() {
		defer close(out)
		runes := []rune(f.text)
		for i := 0; i < len(runes); i += chunkLen {
			end := i + chunkLen
			if end > len(runes) {
				end = len(runes)
			}
			select {
			case out <- Chunk{Delta: string(runes[i:end]), Done: end == len(runes)}:
			case <-ctx.Done():
				return
			}
			if f.delay > 0 {
				select {
				case <-time.After(f.delay):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (f *fakeModel) CountTokens(text string) int { return len([]rune(text)) / 4 }

func (f *fakeModel) Capabilities() Capabilities {
	return Capabilities{Streaming: true, ToolCalling: false, MaxContextLen: 8000}
}

func (f *fakeModel) Name() string { return f.name }
