// Package style defines the conversation styles the AI counterpart can adopt.
package style

import (
	"strings"

	"github.com/parleyhq/parley/internal/core"
)

// Style describes how the counterpart behaves during a negotiation.
type Style struct {
	ID          string     `json:"id"`
	Name        core.Style `json:"name"`
	Description string     `json:"description"`
	// Directive is appended to the response prompt to steer the
	// counterpart's tone.
	Directive string `json:"directive"`
}

// DefaultStyles returns the built-in negotiation styles.
func DefaultStyles() []Style {
	return []Style{
		{
			ID:          "collaborative",
			Name:        core.StyleCollaborative,
			Description: "The counterpart looks for common ground and win-win terms",
			Directive: `Look for shared interests and propose terms that could work for both sides.
Acknowledge good arguments and build on them.`,
		},
		{
			ID:          "aggressive",
			Name:        core.StyleAggressive,
			Description: "The counterpart pushes hard and concedes very little",
			Directive: `Drive a hard bargain. Challenge weak arguments directly, anchor high,
and concede ground only when the user earns it with evidence.`,
		},
		{
			ID:          "neutral",
			Name:        core.StyleNeutral,
			Description: "The counterpart stays even-keeled and businesslike",
			Directive: `Stay measured and professional. Respond to the substance of what was said
without emotional coloring either way.`,
		},
	}
}

// Get returns a style by ID or name, case-insensitively.
func Get(id string) *Style {
	for _, s := range DefaultStyles() {
		if strings.EqualFold(s.ID, id) || strings.EqualFold(string(s.Name), id) {
			return &s
		}
	}
	return nil
}

// List returns all available style IDs.
func List() []string {
	styles := DefaultStyles()
	ids := make([]string, len(styles))
	for i, s := range styles {
		ids[i] = s.ID
	}
	return ids
}

// Valid checks if a style ID is valid.
func Valid(id string) bool {
	return Get(id) != nil
}

// Default returns the default negotiation style.
func Default() *Style {
	return Get("collaborative")
}
