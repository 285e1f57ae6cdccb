package profile

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// EventKind names a committed profile transition.
type EventKind string

const (
	EventOnboardingCompleted EventKind = "onboarding_completed"
	EventPreferencesUpdated  EventKind = "preferences_updated"
	EventProfileUpdated      EventKind = "profile_updated"
	EventMetricsIncremented  EventKind = "metrics_incremented"
)

// Event describes a committed profile transition.
type Event struct {
	Kind EventKind
}

// Store loads the persisted profile document. Implemented by storage.Store.
// A nil profile with nil error means no (or unreadable) stored data.
type Store interface {
	LoadProfile() (*Profile, error)
}

// PreferencesUpdate is a shallow partial update; nil fields are left as-is.
type PreferencesUpdate struct {
	Notifications       *bool
	ShareAnonymizedData *bool
}

// Update is a shallow partial update of top-level profile fields.
type Update struct {
	Name      *string
	Email     *string
	Plan      *Plan
	AvatarRef *string
}

// Controller owns the single profile instance. All operations are
// synchronous state transforms; validation beyond type shape is the
// presentation layer's responsibility.
type Controller struct {
	store Store
	newID func() string

	mu      sync.Mutex
	profile Profile

	subMu sync.Mutex
	subs  []func(Event)
}

// NewController creates a Controller seeded with the fallback profile. Call
// Hydrate to replace it with the stored document.
func NewController(store Store) *Controller {
	c := &Controller{store: store, newID: uuid.NewString}
	c.profile = c.fallback()
	return c
}

// fallback is the first-run default profile.
func (c *Controller) fallback() Profile {
	return Profile{
		ID:    c.newID(),
		Name:  "Busy Alex",
		Email: "alex@searchbot.app",
		Plan:  PlanFree,
		Preferences: Preferences{
			Notifications:       true,
			ShareAnonymizedData: false,
		},
		Metrics: Metrics{
			SatisfactionScore: 92,
		},
		OnboardingComplete: false,
	}
}

// Subscribe registers a transition observer, invoked synchronously after
// each committed transition.
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

// Hydrate loads the stored profile, keeping the fallback when none exists.
// Hydration is not a persistence trigger.
func (c *Controller) Hydrate() error {
	stored, err := c.store.LoadProfile()
	if err != nil {
		return fmt.Errorf("hydrating profile: %w", err)
	}
	if stored == nil {
		return nil
	}

	c.mu.Lock()
	c.profile = *stored
	c.mu.Unlock()
	return nil
}

// CompleteOnboarding marks onboarding done. Idempotent.
func (c *Controller) CompleteOnboarding() {
	c.mu.Lock()
	c.profile.OnboardingComplete = true
	c.mu.Unlock()

	c.emit(Event{Kind: EventOnboardingCompleted})
}

// UpdatePreferences shallow-merges the given fields into preferences.
func (c *Controller) UpdatePreferences(update PreferencesUpdate) {
	c.mu.Lock()
	if update.Notifications != nil {
		c.profile.Preferences.Notifications = *update.Notifications
	}
	if update.ShareAnonymizedData != nil {
		c.profile.Preferences.ShareAnonymizedData = *update.ShareAnonymizedData
	}
	c.mu.Unlock()

	c.emit(Event{Kind: EventPreferencesUpdated})
}

// UpdateProfile shallow-merges the given top-level fields.
func (c *Controller) UpdateProfile(update Update) {
	c.mu.Lock()
	if update.Name != nil {
		c.profile.Name = *update.Name
	}
	if update.Email != nil {
		c.profile.Email = *update.Email
	}
	if update.Plan != nil {
		c.profile.Plan = *update.Plan
	}
	if update.AvatarRef != nil {
		c.profile.AvatarRef = *update.AvatarRef
	}
	c.mu.Unlock()

	c.emit(Event{Kind: EventProfileUpdated})
}

// IncrementMetrics records one more completed search and the minutes it
// saved the user.
func (c *Controller) IncrementMetrics(minutesSaved int) {
	c.mu.Lock()
	c.profile.Metrics.SearchesCompleted++
	c.profile.Metrics.MinutesSaved += minutesSaved
	c.mu.Unlock()

	c.emit(Event{Kind: EventMetricsIncremented})
}

// Profile returns a copy of the current profile.
func (c *Controller) Profile() Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}
