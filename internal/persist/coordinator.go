// Package persist maps committed state transitions to durable-storage
// writes. It is the only component that saves documents; the controllers
// never touch storage on the write path.
package persist

import (
	"log/slog"
	"sync"

	"github.com/kalambet/searchbot/internal/profile"
	"github.com/kalambet/searchbot/internal/search"
)

// HistorySource exposes the current history collection. Implemented by
// search.Controller.
type HistorySource interface {
	History() []search.HistoryRecord
}

// ProfileSource exposes the current profile and its metrics op.
// Implemented by profile.Controller.
type ProfileSource interface {
	Profile() profile.Profile
	IncrementMetrics(minutesSaved int)
}

// DocumentStore is the durable side. Implemented by storage.Store.
type DocumentStore interface {
	SaveHistory([]search.HistoryRecord) error
	SaveProfile(profile.Profile) error
}

// Triggering transitions, mirroring the persistence rule table:
// hydration, completion, and favorite toggles flush history; every profile
// transition flushes the profile; completion additionally derives a
// metrics increment. Record-failure mutations are deliberately absent —
// they reach disk on the next triggering transition.
var (
	historyTriggers = map[search.EventKind]bool{
		search.EventHistoryHydrated: true,
		search.EventSearchCompleted: true,
		search.EventFavoriteToggled: true,
	}
	profileTriggers = map[profile.EventKind]bool{
		profile.EventOnboardingCompleted: true,
		profile.EventPreferencesUpdated:  true,
		profile.EventProfileUpdated:      true,
		profile.EventMetricsIncremented:  true,
	}
)

// Coordinator observes controller transition events and schedules the
// matching save. Each rule fires at most once per event, asynchronously;
// write failures are logged, never surfaced — in-memory state stays
// authoritative for the running session. There is no ordering guarantee
// between history and profile writes fired in the same tick.
type Coordinator struct {
	store    DocumentStore
	searches HistorySource
	profiles ProfileSource
	logger   *slog.Logger

	wg sync.WaitGroup
}

// New creates a Coordinator. Wire it up by subscribing OnSearchEvent and
// OnProfileEvent to the respective controllers.
func New(store DocumentStore, searches HistorySource, profiles ProfileSource) *Coordinator {
	return &Coordinator{
		store:    store,
		searches: searches,
		profiles: profiles,
		logger:   slog.Default(),
	}
}

// OnSearchEvent handles a committed search transition.
func (c *Coordinator) OnSearchEvent(ev search.Event) {
	if historyTriggers[ev.Kind] {
		c.schedule("history", func() error {
			return c.store.SaveHistory(c.searches.History())
		})
	}

	if ev.Kind == search.EventSearchCompleted {
		// Synchronous transform; the resulting metrics event triggers the
		// profile save through OnProfileEvent.
		c.profiles.IncrementMetrics(ev.EstimatedMinutes)
	}
}

// OnProfileEvent handles a committed profile transition.
func (c *Coordinator) OnProfileEvent(ev profile.Event) {
	if profileTriggers[ev.Kind] {
		c.schedule("profile", func() error {
			return c.store.SaveProfile(c.profiles.Profile())
		})
	}
}

// schedule runs one save in its own goroutine. Fire-and-forget relative to
// the transition that triggered it.
func (c *Coordinator) schedule(doc string, save func() error) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := save(); err != nil {
			c.logger.Warn("persisting document failed", "document", doc, "error", err)
		}
	}()
}

// Flush waits for all scheduled writes to finish. Called on shutdown and
// by tests; the UI path never waits on it.
func (c *Coordinator) Flush() {
	c.wg.Wait()
}
