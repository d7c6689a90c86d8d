package coaching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/rehearsed/classroom/backend/internal/model/feedback"
)

type fakeGenerator struct {
	chunks    []string
	streamErr error
}

func (f *fakeGenerator) Generate(ctx context.Context, system, query string) (*schema.Message, error) {
	return nil, errors.New("generate not supported in this fake")
}

func (f *fakeGenerator) Stream(ctx context.Context, system, query string) (*schema.StreamReader[*schema.Message], error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	msgs := make([]*schema.Message, 0, len(f.chunks))
	for _, chunk := range f.chunks {
		msgs = append(msgs, schema.AssistantMessage(chunk, nil))
	}
	return schema.StreamReaderFromArray(msgs), nil
}

func collect(t *testing.T, ch <-chan Event) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("timed out waiting for stream to close")
		}
	}
}

func TestStreamEmitsInsightsThenSummary(t *testing.T) {
	// Chunk boundaries deliberately fall mid-line to exercise buffering.
	gen := &fakeGenerator{chunks: []string{
		`{"category": "Question Quality", "messa`,
		`ge": "Nice open question.", "severity": "suggestion"}` + "\n" + `{"category": "Precision of La`,
		`nguage", "message": "Name the units.", "severity": "info"}` + "\n",
		`{"overall_observation": "Strong discussion overall."}`,
	}}

	events := collect(t, NewStreamer(gen).Stream(context.Background(), Request{Prompt: "What do you notice?"}))

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(events), events)
	}
	if events[0].Type != EventInsight || events[0].Insight.Category != "Question Quality" {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[0].Insight.Severity != feedback.SeveritySuggestion {
		t.Errorf("unexpected severity: %v", events[0].Insight.Severity)
	}
	if events[1].Type != EventInsight || events[1].Insight.Category != "Precision of Language" {
		t.Errorf("unexpected second event: %+v", events[1])
	}
	if events[2].Type != EventSummary || events[2].Observation != "Strong discussion overall." {
		t.Errorf("unexpected terminal event: %+v", events[2])
	}
}

func TestStreamNormalizesUnknownSeverity(t *testing.T) {
	gen := &fakeGenerator{chunks: []string{
		`{"category": "Connecting Ideas", "message": "Link back to the warm-up.", "severity": "catastrophic"}` + "\n",
		`{"overall_observation": "ok"}`,
	}}

	events := collect(t, NewStreamer(gen).Stream(context.Background(), Request{Prompt: "p"}))

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Insight.Severity != feedback.SeverityInfo {
		t.Errorf("unknown severity should normalize to info, got %v", events[0].Insight.Severity)
	}
}

func TestStreamSkipsUnparsableLines(t *testing.T) {
	gen := &fakeGenerator{chunks: []string{
		"Sure, here is my analysis:\n",
		`{"category": "Question Quality", "message": "Good probe.", "severity": "info"}` + "\n",
		`{"overall_observation": "done"}`,
	}}

	events := collect(t, NewStreamer(gen).Stream(context.Background(), Request{Prompt: "p"}))

	if len(events) != 2 {
		t.Fatalf("expected prose line to be skipped, got %d events: %+v", len(events), events)
	}
	if events[0].Type != EventInsight || events[1].Type != EventSummary {
		t.Errorf("unexpected event sequence: %+v", events)
	}
}

func TestStreamMissingSummaryStillTerminates(t *testing.T) {
	gen := &fakeGenerator{chunks: []string{
		`{"category": "Question Quality", "message": "Good probe.", "severity": "info"}` + "\n",
	}}

	events := collect(t, NewStreamer(gen).Stream(context.Background(), Request{Prompt: "p"}))

	last := events[len(events)-1]
	if last.Type != EventSummary {
		t.Fatalf("stream must terminate with a summary event, got %+v", last)
	}
	if last.Observation != "" {
		t.Errorf("expected empty observation, got %q", last.Observation)
	}
}

// breakingGenerator yields its chunks and then fails the stream with a
// non-EOF error, like a dropped upstream connection mid-generation.
type breakingGenerator struct {
	chunks []string
	err    error
}

func (g *breakingGenerator) Generate(ctx context.Context, system, query string) (*schema.Message, error) {
	return nil, errors.New("generate not supported in this fake")
}

func (g *breakingGenerator) Stream(ctx context.Context, system, query string) (*schema.StreamReader[*schema.Message], error) {
	sr, sw := schema.Pipe[*schema.Message](len(g.chunks) + 1)
	go func() {
		defer sw.Close()
		for _, chunk := range g.chunks {
			sw.Send(schema.AssistantMessage(chunk, nil), nil)
		}
		sw.Send(nil, g.err)
	}()
	return sr, nil
}

func TestStreamErrorAfterInsights(t *testing.T) {
	gen := &breakingGenerator{
		chunks: []string{
			`{"category": "Question Quality", "message": "Good probe.", "severity": "info"}` + "\n",
		},
		err: errors.New("upstream reset"),
	}

	events := collect(t, NewStreamer(gen).Stream(context.Background(), Request{Prompt: "p"}))

	if len(events) != 2 {
		t.Fatalf("expected insight then error, got %d events: %+v", len(events), events)
	}
	if events[0].Type != EventInsight || events[0].Insight.Message != "Good probe." {
		t.Errorf("insight emitted before the failure must stand: %+v", events[0])
	}
	if events[1].Type != EventError {
		t.Errorf("terminal event must be an error, got %+v", events[1])
	}
	for _, ev := range events {
		if ev.Type == EventSummary {
			t.Error("a failed stream must not also emit a summary")
		}
	}
}

func TestStreamStartFailure(t *testing.T) {
	gen := &fakeGenerator{streamErr: errors.New("model down")}

	events := collect(t, NewStreamer(gen).Stream(context.Background(), Request{Prompt: "p"}))

	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("expected a single error event, got %+v", events)
	}
}

func TestStreamCancellationClosesChannel(t *testing.T) {
	gen := &fakeGenerator{chunks: []string{
		`{"category": "Question Quality", "message": "one", "severity": "info"}` + "\n",
		`{"category": "Question Quality", "message": "two", "severity": "info"}` + "\n",
		`{"overall_observation": "done"}`,
	}}

	ctx, cancel := context.WithCancel(context.Background())
	ch := NewStreamer(gen).Stream(ctx, Request{Prompt: "p"})
	cancel()

	timeout := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("channel did not close after cancellation")
		}
	}
}
