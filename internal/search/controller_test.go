package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// --- Fakes ---

// fakeResolver resolves instantly with a fixed result or error. When block
// is set, Resolve waits until the channel is closed.
type fakeResolver struct {
	result *Result
	err    error
	block  chan struct{}

	mu    sync.Mutex
	calls int
}

func (f *fakeResolver) Resolve(ctx context.Context, req Request) (*Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		res := *f.result
		return &res, nil
	}
	res := defaultTemplate()
	return &res, nil
}

type fakeHistoryStore struct {
	records []HistoryRecord
	err     error
}

func (f *fakeHistoryStore) LoadHistory() ([]HistoryRecord, error) {
	return f.records, f.err
}

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

func newTestController(resolver ResultResolver, store HistoryStore) *Controller {
	c := NewController(resolver, store)
	c.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return c
}

func submitInput() SubmitInput {
	return SubmitInput{
		Description: "Shower head leaking from connection",
		Category:    "DIY & Home Repair",
		Priority:    PriorityNormal,
	}
}

// --- Tests ---

func TestSubmitSuccess(t *testing.T) {
	c := newTestController(&fakeResolver{}, &fakeHistoryStore{})
	rec := &eventRecorder{}
	c.Subscribe(rec.record)

	record, err := c.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.ID == "" || record.ID != record.Request.ID {
		t.Errorf("record id %q must equal request id %q", record.ID, record.Request.ID)
	}
	if record.Status != RecordCompleted {
		t.Errorf("expected completed, got %s", record.Status)
	}
	if record.Favorite {
		t.Error("new record must not be favorited")
	}
	if record.Result == nil {
		t.Fatal("expected a result")
	}

	snap := c.Snapshot()
	if snap.Status != StatusSuccess {
		t.Errorf("expected success session, got %s", snap.Status)
	}
	if snap.CurrentRequest == nil || snap.CurrentRequest.ID != record.ID {
		t.Error("session must hold the submitted request")
	}
	if snap.CurrentResult == nil {
		t.Error("session must hold the result")
	}

	history := c.History()
	if len(history) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(history))
	}
	if history[0].ID != record.ID {
		t.Errorf("history record id = %q, want %q", history[0].ID, record.ID)
	}

	kinds := rec.kinds()
	if len(kinds) != 1 || kinds[0] != EventSearchCompleted {
		t.Errorf("expected one search_completed event, got %v", kinds)
	}
}

func TestSubmitGeneratesUniqueIDs(t *testing.T) {
	c := newTestController(&fakeResolver{}, &fakeHistoryStore{})

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		record, err := c.Submit(context.Background(), submitInput())
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if seen[record.ID] {
			t.Fatalf("duplicate request id %q", record.ID)
		}
		seen[record.ID] = true
	}
}

func TestSubmitResolverError(t *testing.T) {
	c := newTestController(&fakeResolver{err: errors.New("backend imploded")}, &fakeHistoryStore{})
	rec := &eventRecorder{}
	c.Subscribe(rec.record)

	if _, err := c.Submit(context.Background(), submitInput()); err == nil {
		t.Fatal("expected error")
	}

	snap := c.Snapshot()
	if snap.Status != StatusError {
		t.Errorf("expected error session, got %s", snap.Status)
	}
	if !strings.Contains(snap.ErrorMessage, "backend imploded") {
		t.Errorf("error message %q should carry the cause", snap.ErrorMessage)
	}
	if len(c.History()) != 0 {
		t.Error("history must be untouched on error")
	}
	if len(rec.kinds()) != 0 {
		t.Errorf("no events expected, got %v", rec.kinds())
	}
}

// A user retry after an error re-enters the state machine at processing.
func TestSubmitRetryAfterError(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("boom")}
	c := newTestController(resolver, &fakeHistoryStore{})

	if _, err := c.Submit(context.Background(), submitInput()); err == nil {
		t.Fatal("expected error")
	}

	resolver.err = nil
	record, err := c.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if record.Status != RecordCompleted {
		t.Errorf("retry should complete, got %s", record.Status)
	}
	if msg := c.Snapshot().ErrorMessage; msg != "" {
		t.Errorf("retry must clear the prior error, got %q", msg)
	}
}

func TestSubmitWhileProcessingRejected(t *testing.T) {
	block := make(chan struct{})
	resolver := &fakeResolver{block: block}
	c := newTestController(resolver, &fakeHistoryStore{})

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := c.Submit(context.Background(), submitInput())
		done <- err
	}()

	<-started
	waitForStatus(t, c, StatusProcessing)

	if _, err := c.Submit(context.Background(), submitInput()); !errors.Is(err, ErrSearchInFlight) {
		t.Fatalf("expected ErrSearchInFlight, got %v", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if len(c.History()) != 1 {
		t.Errorf("expected one record, got %d", len(c.History()))
	}
}

func waitForStatus(t *testing.T, c *Controller, want SessionStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.Snapshot().Status == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("session never reached %s", want)
}

func TestHistoryCap(t *testing.T) {
	c := newTestController(&fakeResolver{}, &fakeHistoryStore{})

	var firstID string
	for i := 0; i < historyLimit+1; i++ {
		record, err := c.Submit(context.Background(), submitInput())
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if i == 0 {
			firstID = record.ID
		}
	}

	history := c.History()
	if len(history) != historyLimit {
		t.Fatalf("history length = %d, want %d", len(history), historyLimit)
	}
	for _, rec := range history {
		if rec.ID == firstID {
			t.Error("oldest record should have been evicted")
		}
	}
}

func TestToggleFavoriteIdempotentPair(t *testing.T) {
	c := newTestController(&fakeResolver{}, &fakeHistoryStore{})

	a, _ := c.Submit(context.Background(), submitInput())
	b, _ := c.Submit(context.Background(), submitInput())

	if !c.ToggleFavorite(a.ID) {
		t.Fatal("toggle should find the record")
	}
	if got := findRecord(t, c, a.ID); !got.Favorite {
		t.Error("record should be favorited after one toggle")
	}
	if got := findRecord(t, c, b.ID); got.Favorite {
		t.Error("other record must be unchanged")
	}

	c.ToggleFavorite(a.ID)
	if got := findRecord(t, c, a.ID); got.Favorite {
		t.Error("two toggles must return to the original value")
	}
}

func TestToggleFavoriteUnknownID(t *testing.T) {
	c := newTestController(&fakeResolver{}, &fakeHistoryStore{})
	rec := &eventRecorder{}
	c.Subscribe(rec.record)

	if c.ToggleFavorite("nope") {
		t.Error("toggle on unknown id must be a no-op")
	}
	if len(rec.kinds()) != 0 {
		t.Errorf("no events expected, got %v", rec.kinds())
	}
}

func findRecord(t *testing.T, c *Controller, id string) HistoryRecord {
	t.Helper()
	for _, rec := range c.History() {
		if rec.ID == id {
			return rec
		}
	}
	t.Fatalf("record %s not found", id)
	return HistoryRecord{}
}

func TestMarkFailed(t *testing.T) {
	c := newTestController(&fakeResolver{}, &fakeHistoryStore{})

	record, _ := c.Submit(context.Background(), submitInput())
	c.MarkFailed(record.ID, "result expired")

	got := findRecord(t, c, record.ID)
	if got.Status != RecordFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}
	if got.Result != nil {
		t.Error("result must be cleared")
	}
	if c.Snapshot().ErrorMessage != "result expired" {
		t.Error("session must carry the error message")
	}
}

func TestClearCurrentResult(t *testing.T) {
	c := newTestController(&fakeResolver{}, &fakeHistoryStore{})

	if _, err := c.Submit(context.Background(), submitInput()); err != nil {
		t.Fatal(err)
	}
	c.ClearCurrentResult()

	snap := c.Snapshot()
	if snap.Status != StatusIdle {
		t.Errorf("status = %s, want idle", snap.Status)
	}
	if snap.CurrentRequest != nil || snap.CurrentResult != nil || snap.ErrorMessage != "" {
		t.Error("session must be fully reset")
	}
	if len(c.History()) != 1 {
		t.Error("clearing the session must not touch history")
	}
}

func TestHydrateHistoryReplaces(t *testing.T) {
	stored := []HistoryRecord{
		{ID: "old-1", Status: RecordCompleted},
		{ID: "old-2", Status: RecordFailed},
	}
	c := newTestController(&fakeResolver{}, &fakeHistoryStore{records: stored})
	rec := &eventRecorder{}
	c.Subscribe(rec.record)

	if _, err := c.Submit(context.Background(), submitInput()); err != nil {
		t.Fatal(err)
	}

	if err := c.HydrateHistory(); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	history := c.History()
	if len(history) != 2 || history[0].ID != "old-1" {
		t.Errorf("hydrate must replace, not merge: %+v", history)
	}

	kinds := rec.kinds()
	if len(kinds) != 2 || kinds[1] != EventHistoryHydrated {
		t.Errorf("expected hydrated event last, got %v", kinds)
	}
}

func TestHydrateHistoryLoadError(t *testing.T) {
	c := newTestController(&fakeResolver{}, &fakeHistoryStore{err: fmt.Errorf("disk on fire")})

	if err := c.HydrateHistory(); err == nil {
		t.Fatal("expected error")
	}
}

// End-to-end: default template through the real resolver with a stubbed
// sleeper, per the documented home-repair scenario.
func TestSubmitEndToEndSimulated(t *testing.T) {
	resolver := NewResolver(nil, false)
	var slept time.Duration
	resolver.sleep = func(ctx context.Context, d time.Duration) error {
		slept = d
		return nil
	}

	c := newTestController(resolver, &fakeHistoryStore{})
	record, err := c.Submit(context.Background(), SubmitInput{
		Description: "Shower head leaking from connection",
		Category:    "DIY & Home Repair",
		Priority:    PriorityNormal,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if slept != defaultSimulatedDelay {
		t.Errorf("slept %v, want %v", slept, defaultSimulatedDelay)
	}
	if !strings.Contains(record.Result.Summary, "teflon tape") {
		t.Errorf("default template summary should mention teflon tape, got %q", record.Result.Summary)
	}
	if c.Snapshot().Status != StatusSuccess {
		t.Error("session should be success")
	}
	if record.Favorite {
		t.Error("record must not be favorited")
	}
}
