package advisory

import (
	"atoiota/internal/models"
	"atoiota/internal/portfolio"
)

// Kind tags an advisory suggestion. Only rebalance, trade and protection
// suggestions carry category changes and may produce a draft; analysis is
// informational.
type Kind string

const (
	KindRebalance  Kind = "rebalance"
	KindTrade      Kind = "trade"
	KindAnalysis   Kind = "analysis"
	KindProtection Kind = "protection"
)

// Change is one suggested category adjustment.
type Change struct {
	Category string `json:"category"`
	From     int    `json:"from"`
	To       int    `json:"to"`
}

// Suggestion is the action payload emitted by the advisory feed.
type Suggestion struct {
	Kind        Kind     `json:"type"`
	Description string   `json:"description"`
	Changes     []Change `json:"changes,omitempty"`
}

// Actionable reports whether the suggestion may produce a draft.
func (s Suggestion) Actionable() bool {
	switch s.Kind {
	case KindRebalance, KindTrade, KindProtection:
		return true
	}
	return false
}

// ApplyToStore turns an actionable suggestion into a draft by applying each
// change's target value on top of the current draft-or-committed set. The
// changes are staged on a copy and installed all at once, so a suggestion with
// a bad change leaves any existing draft untouched. The resulting draft may be
// unbalanced; the caller decides whether to auto-balance before applying.
func ApplyToStore(store *portfolio.Store, s Suggestion) ([]models.AllocationCategory, error) {
	if !s.Actionable() {
		return nil, portfolio.NewError(portfolio.CodeInvalidState,
			"suggestion of type %q carries no allocation changes", s.Kind)
	}
	if len(s.Changes) == 0 {
		return nil, portfolio.NewError(portfolio.CodeNoChanges, "suggestion carries an empty change list")
	}

	next := store.Draft()
	if next == nil {
		next = store.Committed()
	}
	for _, change := range s.Changes {
		if change.To < 0 || change.To > 100 {
			return nil, portfolio.NewError(portfolio.CodeInvalidAllocation,
				"allocation must be between 0 and 100, got %d", change.To)
		}
		found := false
		for i := range next {
			if next[i].ID == change.Category {
				next[i].Allocation = change.To
				found = true
				break
			}
		}
		if !found {
			return nil, portfolio.NewError(portfolio.CodeNotFound, "unknown category %q", change.Category)
		}
	}

	store.SetDraft(next)
	return store.Draft(), nil
}
