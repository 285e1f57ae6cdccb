// Package api is the localhost HTTP shell over the core controllers. It
// validates input, calls core operations, and renders core state; it holds
// no state of its own.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/searchbot/internal/profile"
	"github.com/kalambet/searchbot/internal/search"
)

const maxBodySize = 1 << 20 // 1MB

// minDescriptionLen is the shortest acceptable trimmed problem
// description. Enforced here, before dispatch; the controller assumes
// pre-validated input.
const minDescriptionLen = 12

type Deps struct {
	Searches *search.Controller
	Profiles *profile.Controller
}

// NewHandler builds the shell router.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/search", handleSearch(deps))
	r.Get("/session", handleSession(deps))
	r.Post("/session/clear", handleClearSession(deps))
	r.Get("/history", handleListHistory(deps))
	r.Post("/history/{id}/favorite", handleToggleFavorite(deps))
	r.Get("/profile", handleGetProfile(deps))
	r.Patch("/profile", handlePatchProfile(deps))
	r.Post("/profile/onboarding", handleCompleteOnboarding(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "searchbot-api",
	})
}

// SearchRequest is the shell's submission payload.
type SearchRequest struct {
	Description     string `json:"description"`
	Category        string `json:"category"`
	Priority        string `json:"priority"`
	ImageRef        string `json:"imageUri"`
	VoiceTranscript string `json:"voiceTranscript"`
	Language        string `json:"language"`
}

func handleSearch(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		defer r.Body.Close()

		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		desc := strings.TrimSpace(req.Description)
		if utf8.RuneCountInString(desc) < minDescriptionLen {
			httpError(w, http.StatusBadRequest, "invalid_request_error",
				"description must be at least %d characters", minDescriptionLen)
			return
		}

		priority := search.Priority(req.Priority)
		switch priority {
		case search.PriorityUrgent, search.PriorityNormal, search.PriorityLow:
		case "":
			priority = search.PriorityNormal
		default:
			httpError(w, http.StatusBadRequest, "invalid_request_error", "unknown priority %q", req.Priority)
			return
		}

		rec, err := deps.Searches.Submit(r.Context(), search.SubmitInput{
			Description:     desc,
			Category:        req.Category,
			Priority:        priority,
			ImageRef:        req.ImageRef,
			VoiceTranscript: req.VoiceTranscript,
			Language:        req.Language,
		})
		if errors.Is(err, search.ErrSearchInFlight) {
			httpError(w, http.StatusConflict, "search_in_flight", "a search is already processing")
			return
		}
		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "search failed: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, rec)
	}
}

// sessionView is the rendered session state.
type sessionView struct {
	Status         search.SessionStatus `json:"status"`
	CurrentRequest *search.Request      `json:"currentRequest,omitempty"`
	CurrentResult  *search.Result       `json:"currentResult,omitempty"`
	ErrorMessage   string               `json:"errorMessage,omitempty"`
}

func handleSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := deps.Searches.Snapshot()
		writeJSON(w, http.StatusOK, sessionView{
			Status:         snap.Status,
			CurrentRequest: snap.CurrentRequest,
			CurrentResult:  snap.CurrentResult,
			ErrorMessage:   snap.ErrorMessage,
		})
	}
}

func handleClearSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.Searches.ClearCurrentResult()
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleListHistory(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records := deps.Searches.History()
		if r.URL.Query().Get("favorites") == "true" {
			filtered := records[:0]
			for _, rec := range records {
				if rec.Favorite {
					filtered = append(filtered, rec)
				}
			}
			records = filtered
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func handleToggleFavorite(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !deps.Searches.ToggleFavorite(id) {
			httpError(w, http.StatusNotFound, "not_found", "no history record %s", id)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleGetProfile(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, deps.Profiles.Profile())
	}
}

// ProfilePatch is the shell's shallow profile update payload.
type ProfilePatch struct {
	Name        *string       `json:"name"`
	Email       *string       `json:"email"`
	Plan        *profile.Plan `json:"plan"`
	AvatarRef   *string       `json:"avatarUrl"`
	Preferences *struct {
		Notifications       *bool `json:"notifications"`
		ShareAnonymizedData *bool `json:"shareAnonymizedData"`
	} `json:"preferences"`
}

func handlePatchProfile(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		defer r.Body.Close()

		var patch ProfilePatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if patch.Plan != nil && *patch.Plan != profile.PlanFree && *patch.Plan != profile.PlanPremium {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "unknown plan %q", *patch.Plan)
			return
		}

		if patch.Name != nil || patch.Email != nil || patch.Plan != nil || patch.AvatarRef != nil {
			deps.Profiles.UpdateProfile(profile.Update{
				Name:      patch.Name,
				Email:     patch.Email,
				Plan:      patch.Plan,
				AvatarRef: patch.AvatarRef,
			})
		}
		if patch.Preferences != nil {
			deps.Profiles.UpdatePreferences(profile.PreferencesUpdate{
				Notifications:       patch.Preferences.Notifications,
				ShareAnonymizedData: patch.Preferences.ShareAnonymizedData,
			})
		}

		writeJSON(w, http.StatusOK, deps.Profiles.Profile())
	}
}

func handleCompleteOnboarding(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.Profiles.CompleteOnboarding()
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
