package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// historyLimit caps the history collection; the oldest record is evicted
// on overflow.
const historyLimit = 50

// ErrSearchInFlight is returned by Submit while another search is still
// processing. The session has exactly one in-flight slot.
var ErrSearchInFlight = errors.New("a search is already processing")

// EventKind names a committed state transition observable by subscribers.
type EventKind string

const (
	EventHistoryHydrated EventKind = "history_hydrated"
	EventSearchCompleted EventKind = "search_completed"
	EventFavoriteToggled EventKind = "favorite_toggled"
)

// Event describes a committed transition. EstimatedMinutes is set only for
// EventSearchCompleted, carrying the result's estimate for derived metrics.
type Event struct {
	Kind             EventKind
	RecordID         string
	EstimatedMinutes int
}

// ResultResolver is the controller's view of the Resolver.
type ResultResolver interface {
	Resolve(ctx context.Context, req Request) (*Result, error)
}

// HistoryStore loads the persisted history collection. Implemented by
// storage.Store. Saving is the persistence coordinator's job, not the
// controller's.
type HistoryStore interface {
	LoadHistory() ([]HistoryRecord, error)
}

// SubmitInput is a pre-validated search submission. Callers must enforce
// that the trimmed description is at least 12 characters before dispatch;
// the controller does not re-validate.
type SubmitInput struct {
	Description     string
	Category        string
	Priority        Priority
	ImageRef        string
	VoiceTranscript string
	Language        string
}

// Controller owns the session state machine and the in-memory history
// collection. All state transforms happen under a single mutex held only
// for the synchronous portion, never across resolver I/O. Transition
// events are delivered to subscribers after the transition commits.
type Controller struct {
	resolver ResultResolver
	store    HistoryStore
	now      func() time.Time
	newID    func() string

	mu      sync.Mutex
	session SessionState
	history []HistoryRecord

	subMu sync.Mutex
	subs  []func(Event)
}

// NewController creates a Controller in the idle state with empty history.
func NewController(resolver ResultResolver, store HistoryStore) *Controller {
	return &Controller{
		resolver: resolver,
		store:    store,
		now:      time.Now,
		newID:    uuid.NewString,
		session:  SessionState{Status: StatusIdle},
	}
}

// Subscribe registers a transition observer. Observers run synchronously on
// the mutating goroutine, after the transition has committed and the state
// lock has been released.
func (c *Controller) Subscribe(fn func(Event)) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.subs = append(c.subs, fn)
}

func (c *Controller) emit(ev Event) {
	c.subMu.Lock()
	subs := make([]func(Event), len(c.subs))
	copy(subs, c.subs)
	c.subMu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// Submit enters processing, resolves the request, and commits the terminal
// transition. It blocks for the resolver's latency and returns the
// completed history record. A second Submit while one is processing is
// rejected with ErrSearchInFlight.
func (c *Controller) Submit(ctx context.Context, input SubmitInput) (HistoryRecord, error) {
	req, err := c.beginProcessing(input)
	if err != nil {
		return HistoryRecord{}, err
	}

	result, err := c.resolver.Resolve(ctx, req)
	if err != nil {
		c.commitError(err)
		return HistoryRecord{}, fmt.Errorf("resolving search %s: %w", req.ID, err)
	}

	rec := c.commitSuccess(req, result)
	c.emit(Event{
		Kind:             EventSearchCompleted,
		RecordID:         rec.ID,
		EstimatedMinutes: result.EstimatedMinutes,
	})
	return rec, nil
}

// beginProcessing performs the idle → processing transition: fresh request
// ID and timestamp, prior error and result cleared.
func (c *Controller) beginProcessing(input SubmitInput) (Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Status == StatusProcessing {
		return Request{}, ErrSearchInFlight
	}

	req := Request{
		ID:              c.newID(),
		Description:     input.Description,
		Category:        input.Category,
		Priority:        input.Priority,
		ImageRef:        input.ImageRef,
		VoiceTranscript: input.VoiceTranscript,
		Language:        input.Language,
		CreatedAt:       c.now().UTC(),
	}
	c.session = SessionState{
		CurrentRequest: &req,
		Status:         StatusProcessing,
	}
	return req, nil
}

// commitSuccess performs processing → success: stores the result and
// prepends a completed record, evicting past the history cap.
func (c *Controller) commitSuccess(req Request, result *Result) HistoryRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session.Status = StatusSuccess
	c.session.CurrentResult = result
	c.session.ErrorMessage = ""

	rec := HistoryRecord{
		ID:       req.ID,
		Request:  req,
		Result:   result,
		Status:   RecordCompleted,
		Favorite: false,
		SavedAt:  c.now().UTC(),
	}
	c.history = append([]HistoryRecord{rec}, c.history...)
	if len(c.history) > historyLimit {
		c.history = c.history[:historyLimit]
	}
	return rec
}

// commitError performs processing → error. History is left untouched.
func (c *Controller) commitError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Status = StatusError
	c.session.ErrorMessage = err.Error()
}

// ClearCurrentResult returns the session to idle from any state.
func (c *Controller) ClearCurrentResult() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = SessionState{Status: StatusIdle}
}

// ToggleFavorite flips the favorite flag of the record with the given ID.
// Returns false (and emits nothing) when the ID is absent.
func (c *Controller) ToggleFavorite(id string) bool {
	c.mu.Lock()
	found := false
	for i := range c.history {
		if c.history[i].ID == id {
			c.history[i].Favorite = !c.history[i].Favorite
			found = true
			break
		}
	}
	c.mu.Unlock()

	if found {
		c.emit(Event{Kind: EventFavoriteToggled, RecordID: id})
	}
	return found
}

// MarkFailed sets a record's status to failed, drops its result, and
// records the error on the session state. No-op on an unknown ID.
func (c *Controller) MarkFailed(id, errorMessage string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.history {
		if c.history[i].ID == id {
			c.history[i].Status = RecordFailed
			c.history[i].Result = nil
			c.session.ErrorMessage = errorMessage
			return
		}
	}
}

// HydrateHistory replaces the in-memory history with the persisted
// collection. Called at startup; a load failure leaves memory untouched.
func (c *Controller) HydrateHistory() error {
	records, err := c.store.LoadHistory()
	if err != nil {
		return fmt.Errorf("hydrating history: %w", err)
	}

	c.mu.Lock()
	c.history = records
	c.mu.Unlock()

	c.emit(Event{Kind: EventHistoryHydrated})
	return nil
}

// Snapshot returns a copy of the session state. The request/result pointers
// reference copies, so callers cannot mutate controller state through them.
func (c *Controller) Snapshot() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := SessionState{
		Status:       c.session.Status,
		ErrorMessage: c.session.ErrorMessage,
	}
	if c.session.CurrentRequest != nil {
		req := *c.session.CurrentRequest
		snap.CurrentRequest = &req
	}
	if c.session.CurrentResult != nil {
		res := *c.session.CurrentResult
		snap.CurrentResult = &res
	}
	return snap
}

// History returns a copy of the history collection, most recent first.
func (c *Controller) History() []HistoryRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]HistoryRecord, len(c.history))
	copy(out, c.history)
	return out
}
