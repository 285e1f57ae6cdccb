package persist

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kalambet/searchbot/internal/profile"
	"github.com/kalambet/searchbot/internal/search"
)

// --- Fakes ---

// recordingStore counts full-document writes per key.
type recordingStore struct {
	mu           sync.Mutex
	historySaves [][]search.HistoryRecord
	profileSaves []profile.Profile
	historyErr   error
	profileErr   error
}

func (s *recordingStore) SaveHistory(records []search.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.historyErr != nil {
		return s.historyErr
	}
	s.historySaves = append(s.historySaves, records)
	return nil
}

func (s *recordingStore) SaveProfile(p profile.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profileErr != nil {
		return s.profileErr
	}
	s.profileSaves = append(s.profileSaves, p)
	return nil
}

func (s *recordingStore) counts() (history, prof int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.historySaves), len(s.profileSaves)
}

type instantResolver struct {
	minutes int
}

func (r *instantResolver) Resolve(ctx context.Context, req search.Request) (*search.Result, error) {
	return &search.Result{
		Summary:          "done",
		EstimatedMinutes: r.minutes,
		Difficulty:       search.DifficultyEasy,
	}, nil
}

type emptyHistoryStore struct{}

func (emptyHistoryStore) LoadHistory() ([]search.HistoryRecord, error) {
	return []search.HistoryRecord{}, nil
}

type emptyProfileStore struct{}

func (emptyProfileStore) LoadProfile() (*profile.Profile, error) { return nil, nil }

// wire builds real controllers subscribed to a coordinator over the given
// store, mirroring the production wiring.
func wire(store DocumentStore, minutes int) (*search.Controller, *profile.Controller, *Coordinator) {
	searches := search.NewController(&instantResolver{minutes: minutes}, emptyHistoryStore{})
	profiles := profile.NewController(emptyProfileStore{})
	coordinator := New(store, searches, profiles)
	searches.Subscribe(coordinator.OnSearchEvent)
	profiles.Subscribe(coordinator.OnProfileEvent)
	return searches, profiles, coordinator
}

func submitInput() search.SubmitInput {
	return search.SubmitInput{
		Description: "test problem description",
		Category:    "General",
		Priority:    search.PriorityNormal,
	}
}

// --- Tests ---

func TestSearchCompletedSavesHistoryAndDerivesMetrics(t *testing.T) {
	store := &recordingStore{}
	searches, profiles, coordinator := wire(store, 25)

	if _, err := searches.Submit(context.Background(), submitInput()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	coordinator.Flush()

	historySaves, profileSaves := store.counts()
	if historySaves != 1 {
		t.Errorf("history saves = %d, want 1", historySaves)
	}
	if profileSaves != 1 {
		t.Errorf("profile saves = %d, want 1", profileSaves)
	}

	p := profiles.Profile()
	if p.Metrics.SearchesCompleted != 1 {
		t.Errorf("searchesCompleted = %d, want 1", p.Metrics.SearchesCompleted)
	}
	if p.Metrics.MinutesSaved != 25 {
		t.Errorf("minutesSaved = %d, want 25", p.Metrics.MinutesSaved)
	}

	store.mu.Lock()
	saved := store.historySaves[0]
	store.mu.Unlock()
	if len(saved) != 1 {
		t.Fatalf("saved history length = %d, want 1", len(saved))
	}
}

func TestMetricsAccumulateAcrossSearches(t *testing.T) {
	store := &recordingStore{}
	searches, profiles, coordinator := wire(store, 10)

	for i := 0; i < 3; i++ {
		if _, err := searches.Submit(context.Background(), submitInput()); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	coordinator.Flush()

	p := profiles.Profile()
	if p.Metrics.SearchesCompleted != 3 || p.Metrics.MinutesSaved != 30 {
		t.Errorf("metrics = %+v, want 3 searches / 30 minutes", p.Metrics)
	}
}

func TestHydrationTriggersHistorySave(t *testing.T) {
	store := &recordingStore{}
	searches, _, coordinator := wire(store, 0)

	if err := searches.HydrateHistory(); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	coordinator.Flush()

	historySaves, profileSaves := store.counts()
	if historySaves != 1 {
		t.Errorf("history saves = %d, want 1", historySaves)
	}
	if profileSaves != 0 {
		t.Errorf("profile saves = %d, want 0", profileSaves)
	}
}

// Two rapid favorite toggles and a profile update must persist
// independently to their own keys, not merged or batched.
func TestIndependentWritesPerTrigger(t *testing.T) {
	store := &recordingStore{}
	searches, profiles, coordinator := wire(store, 5)

	record, err := searches.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	coordinator.Flush()
	baseHistory, baseProfile := store.counts()

	searches.ToggleFavorite(record.ID)
	searches.ToggleFavorite(record.ID)
	name := "Renamed User"
	profiles.UpdateProfile(profile.Update{Name: &name})
	coordinator.Flush()

	historySaves, profileSaves := store.counts()
	if historySaves-baseHistory != 2 {
		t.Errorf("history saves for two toggles = %d, want 2", historySaves-baseHistory)
	}
	if profileSaves-baseProfile != 1 {
		t.Errorf("profile saves for one update = %d, want 1", profileSaves-baseProfile)
	}

	store.mu.Lock()
	last := store.profileSaves[len(store.profileSaves)-1]
	store.mu.Unlock()
	if last.Name != "Renamed User" {
		t.Errorf("profile save carries %q, want the updated name", last.Name)
	}
}

func TestMarkFailedIsNotATrigger(t *testing.T) {
	store := &recordingStore{}
	searches, _, coordinator := wire(store, 0)

	record, err := searches.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	coordinator.Flush()
	baseHistory, _ := store.counts()

	searches.MarkFailed(record.ID, "expired")
	coordinator.Flush()

	historySaves, _ := store.counts()
	if historySaves != baseHistory {
		t.Errorf("markFailed must not schedule a save, got %d extra", historySaves-baseHistory)
	}
}

func TestWriteFailuresAreSwallowed(t *testing.T) {
	store := &recordingStore{historyErr: errors.New("disk full"), profileErr: errors.New("disk full")}
	searches, profiles, coordinator := wire(store, 15)

	if _, err := searches.Submit(context.Background(), submitInput()); err != nil {
		t.Fatalf("submit must not surface persistence errors: %v", err)
	}
	coordinator.Flush()

	// In-memory state stays authoritative.
	if len(searches.History()) != 1 {
		t.Error("history must survive a failed write")
	}
	if profiles.Profile().Metrics.SearchesCompleted != 1 {
		t.Error("metrics must survive a failed write")
	}
}

func TestProfileTriggersSaveProfile(t *testing.T) {
	store := &recordingStore{}
	_, profiles, coordinator := wire(store, 0)

	profiles.CompleteOnboarding()
	notifications := false
	profiles.UpdatePreferences(profile.PreferencesUpdate{Notifications: &notifications})
	coordinator.Flush()

	_, profileSaves := store.counts()
	if profileSaves != 2 {
		t.Errorf("profile saves = %d, want 2", profileSaves)
	}
}
