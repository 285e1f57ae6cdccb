package search

import "time"

// Priority indicates how quickly the user needs an answer. It influences
// only the simulated research latency; the backend is free to ignore it.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Difficulty grades how hard the recommended solution is to execute.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// SessionStatus is the state of the single in-flight search.
type SessionStatus string

const (
	StatusIdle       SessionStatus = "idle"
	StatusProcessing SessionStatus = "processing"
	StatusSuccess    SessionStatus = "success"
	StatusError      SessionStatus = "error"
)

// RecordStatus is the terminal state of a history record.
type RecordStatus string

const (
	RecordProcessing RecordStatus = "processing"
	RecordCompleted  RecordStatus = "completed"
	RecordFailed     RecordStatus = "failed"
)

// Request is a normalized search request. Immutable once created; the ID is
// generated at submission time and is unique within the process.
// JSON field names follow the backend wire contract.
type Request struct {
	ID              string    `json:"id"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Priority        Priority  `json:"priority"`
	ImageRef        string    `json:"imageUri,omitempty"`
	VoiceTranscript string    `json:"voiceTranscript,omitempty"`
	Language        string    `json:"language,omitempty"` // ISO 639-1
	CreatedAt       time.Time `json:"createdAt"`
}

// Step is one ordered action within a result.
type Step struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DecisionFactor is a trade-off the user should weigh before acting.
type DecisionFactor struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Detail string `json:"detail"`
}

// Source is a cited reference with a 0-100 credibility score.
type Source struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Credibility int    `json:"credibility"`
	Snippet     string `json:"snippet"`
}

// Result is a completed research payload. Produced by the Resolver;
// immutable once attached to a history record.
type Result struct {
	Summary            string           `json:"summary"`
	Steps              []Step           `json:"steps"`
	DecisionFactors    []DecisionFactor `json:"decisionFactors"`
	Sources            []Source         `json:"sources"`
	EstimatedMinutes   int              `json:"estimatedTimeMinutes"`
	Difficulty         Difficulty       `json:"difficulty"`
	RecommendedActions []string         `json:"recommendedActions"`
}

// HistoryRecord pairs one request with its eventual result. The record ID
// equals the request ID and is unique across the history collection.
type HistoryRecord struct {
	ID       string       `json:"id"`
	Request  Request      `json:"request"`
	Result   *Result      `json:"result,omitempty"`
	Status   RecordStatus `json:"status"`
	Favorite bool         `json:"favorite"`
	SavedAt  time.Time    `json:"savedAt"`
}

// SessionState is the ephemeral in-flight search state. Never persisted.
type SessionState struct {
	CurrentRequest *Request
	CurrentResult  *Result
	Status         SessionStatus
	ErrorMessage   string
}
