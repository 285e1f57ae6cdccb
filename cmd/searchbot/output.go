package main

import (
	"fmt"
	"io"
	"os"

	"github.com/kalambet/searchbot/internal/search"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+fmt.Sprintf(format, args...)))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+fmt.Sprintf(format, args...)))
}

func printStep(format string, args ...any) {
	fmt.Fprintln(os.Stderr, colorize(colorCyan, "→ "+fmt.Sprintf(format, args...)))
}

func printStatus(label string, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "  %s %s\n", colorize(colorBold, label+":"), fmt.Sprintf(format, args...))
}

// renderRecordLine prints one compact history row.
func renderRecordLine(w io.Writer, rec search.HistoryRecord) {
	marker := " "
	if rec.Favorite {
		marker = colorize(colorYellow, "★")
	}
	desc := rec.Request.Description
	if len(desc) > 60 {
		desc = desc[:57] + "..."
	}
	fmt.Fprintf(w, "%s %s  %-9s  %s\n", marker, rec.ID, rec.Status, desc)
}

// renderRecord prints a full result the way the app's result screen lays
// it out: summary, steps, decision factors, sources, recommended actions.
func renderRecord(w io.Writer, rec search.HistoryRecord) {
	fmt.Fprintln(w, colorize(colorBold, rec.Request.Description))
	if rec.Result == nil {
		fmt.Fprintf(w, "  status: %s\n", rec.Status)
		return
	}
	res := rec.Result

	fmt.Fprintln(w)
	fmt.Fprintln(w, res.Summary)
	fmt.Fprintf(w, "\nEstimated time: %d min  |  Difficulty: %s\n", res.EstimatedMinutes, res.Difficulty)

	if len(res.Steps) > 0 {
		fmt.Fprintln(w, colorize(colorBold, "\nSteps"))
		for i, step := range res.Steps {
			fmt.Fprintf(w, "  %d. %s\n     %s\n", i+1, step.Title, step.Description)
		}
	}

	if len(res.DecisionFactors) > 0 {
		fmt.Fprintln(w, colorize(colorBold, "\nDecision factors"))
		for _, f := range res.DecisionFactors {
			fmt.Fprintf(w, "  - %s: %s\n", f.Label, f.Detail)
		}
	}

	if len(res.Sources) > 0 {
		fmt.Fprintln(w, colorize(colorBold, "\nSources"))
		for _, s := range res.Sources {
			fmt.Fprintf(w, "  - %s (credibility %d)\n    %s\n", s.Title, s.Credibility, s.URL)
		}
	}

	if len(res.RecommendedActions) > 0 {
		fmt.Fprintln(w, colorize(colorBold, "\nRecommended actions"))
		for _, action := range res.RecommendedActions {
			fmt.Fprintf(w, "  - %s\n", action)
		}
	}
}
