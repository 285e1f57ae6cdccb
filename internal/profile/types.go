package profile

// Plan is the user's subscription tier.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// Preferences holds the user's notification and privacy choices.
type Preferences struct {
	Notifications       bool `json:"notifications"`
	ShareAnonymizedData bool `json:"shareAnonymizedData"`
}

// Metrics accumulates usage counters derived from completed searches.
type Metrics struct {
	SearchesCompleted int `json:"searchesCompleted"`
	MinutesSaved      int `json:"minutesSaved"`
	SatisfactionScore int `json:"satisfactionScore"`
}

// Profile is the single per-installation user document. Created with
// fallback defaults on first run, thereafter loaded from durable storage.
type Profile struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Email              string      `json:"email"`
	Plan               Plan        `json:"plan"`
	AvatarRef          string      `json:"avatarUrl,omitempty"`
	Preferences        Preferences `json:"preferences"`
	Metrics            Metrics     `json:"metrics"`
	OnboardingComplete bool        `json:"onboardingComplete"`
}
