package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/kalambet/searchbot/internal/backend"
	"github.com/kalambet/searchbot/internal/config"
	"github.com/kalambet/searchbot/internal/profile"
	"github.com/kalambet/searchbot/internal/search"
	"github.com/kalambet/searchbot/internal/storage"
)

// minDescriptionLen mirrors the shell-side validation: the core assumes
// pre-validated input.
const minDescriptionLen = 12

// --- ask ---

var askCmd = &cobra.Command{
	Use:   "ask <description>",
	Short: "Research a problem and save the result to history",
	Long: `Research a problem and save the result to history.

Examples:
  searchbot ask "Shower head leaking from connection" --category "DIY & Home Repair"
  searchbot ask "Best smartphone under $500" --category "Shopping smartphone deal" --priority urgent`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description := strings.TrimSpace(strings.Join(args, " "))
		if utf8.RuneCountInString(description) < minDescriptionLen {
			return fmt.Errorf("description must be at least %d characters", minDescriptionLen)
		}

		category, _ := cmd.Flags().GetString("category")
		priorityStr, _ := cmd.Flags().GetString("priority")
		imageRef, _ := cmd.Flags().GetString("image")
		transcript, _ := cmd.Flags().GetString("transcript")
		language, _ := cmd.Flags().GetString("language")

		priority := search.Priority(priorityStr)
		switch priority {
		case search.PriorityUrgent, search.PriorityNormal, search.PriorityLow:
		default:
			return fmt.Errorf("priority must be one of urgent, normal, low")
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		printStep("Researching (%s priority)...", priority)
		rec, err := a.searches.Submit(cmd.Context(), search.SubmitInput{
			Description:     description,
			Category:        category,
			Priority:        priority,
			ImageRef:        imageRef,
			VoiceTranscript: transcript,
			Language:        language,
		})
		if err != nil {
			return err
		}

		renderRecord(os.Stdout, rec)
		printSuccess("Saved to history as %s", rec.ID)
		return nil
	},
}

func init() {
	askCmd.Flags().String("category", "", "problem category, e.g. \"DIY & Home Repair\"")
	askCmd.Flags().String("priority", "normal", "priority: urgent, normal, or low")
	askCmd.Flags().String("image", "", "reference to an attached image")
	askCmd.Flags().String("transcript", "", "voice input transcript")
	askCmd.Flags().String("language", "", "ISO 639-1 language hint")
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse saved searches",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List history records, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		favoritesOnly, _ := cmd.Flags().GetBool("favorites")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		records := a.searches.History()
		shown := 0
		for _, rec := range records {
			if favoritesOnly && !rec.Favorite {
				continue
			}
			renderRecordLine(os.Stdout, rec)
			shown++
		}
		if shown == 0 {
			printWarning("No history records")
		}
		return nil
	},
}

var historyFavoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Toggle a record's favorite flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.searches.ToggleFavorite(args[0]) {
			return fmt.Errorf("no history record %s", args[0])
		}
		printSuccess("Toggled favorite on %s", args[0])
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one history record in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		for _, rec := range a.searches.History() {
			if rec.ID == args[0] {
				renderRecord(os.Stdout, rec)
				return nil
			}
		}
		return fmt.Errorf("no history record %s", args[0])
	},
}

func init() {
	historyListCmd.Flags().Bool("favorites", false, "show only favorited records")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyFavoriteCmd)
	historyCmd.AddCommand(historyShowCmd)
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the user profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current profile as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(a.profiles.Profile())
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Update a profile field",
	Long: `Update a profile field.

Fields: name, email, plan (free|premium), avatar,
        notifications (true|false), share-anonymized-data (true|false)`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, value := args[0], args[1]

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		switch field {
		case "name":
			a.profiles.UpdateProfile(profile.Update{Name: &value})
		case "email":
			a.profiles.UpdateProfile(profile.Update{Email: &value})
		case "avatar":
			a.profiles.UpdateProfile(profile.Update{AvatarRef: &value})
		case "plan":
			plan := profile.Plan(value)
			if plan != profile.PlanFree && plan != profile.PlanPremium {
				return fmt.Errorf("plan must be free or premium")
			}
			a.profiles.UpdateProfile(profile.Update{Plan: &plan})
		case "notifications", "share-anonymized-data":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("%s must be true or false", field)
			}
			update := profile.PreferencesUpdate{}
			if field == "notifications" {
				update.Notifications = &b
			} else {
				update.ShareAnonymizedData = &b
			}
			a.profiles.UpdatePreferences(update)
		default:
			return fmt.Errorf("unknown field %q", field)
		}

		printSuccess("Updated %s", field)
		return nil
	},
}

var profileOnboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Mark onboarding as complete",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		a.profiles.CompleteOnboarding()
		printSuccess("Onboarding complete")
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileOnboardCmd)
}

// --- reset ---

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all stored data (history and profile)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		if err := store.ClearAll(); err != nil {
			return err
		}
		printSuccess("Cleared history and profile")
		return nil
	},
}

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and backend health",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		mode := "simulated"
		if cfg.API.LiveSearchEnabled() {
			mode = "live"
		}
		printStatus("Backend", "%s", cfg.API.BaseURL)
		printStatus("Mode", "%s", mode)
		printStatus("Data dir", "%s", cfg.Storage.DataDir)

		if !cfg.API.LiveSearchEnabled() {
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		h, err := backend.New(cfg.API.BaseURL).CheckHealth(ctx)
		if err != nil {
			printWarning("Backend unreachable: %v (searches will fall back to simulation)", err)
			return nil
		}
		printSuccess("Backend healthy: %s (%s)", h.Status, h.Service)
		return nil
	},
}
