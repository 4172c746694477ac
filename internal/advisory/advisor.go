package advisory

import (
	"strings"

	"atoiota/internal/models"
)

// Reply is a chat answer, optionally carrying an actionable suggestion.
type Reply struct {
	Content    string      `json:"content"`
	Suggestion *Suggestion `json:"suggestion,omitempty"`
}

// Respond produces a canned chat answer by keyword matching, the same
// heuristics the dashboard assistant ships with. current is the committed
// set, used to fill the From side of suggested changes.
func Respond(message string, current []models.AllocationCategory) Reply {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "rebalance") || strings.Contains(lower, "portfolio"):
		suggestion := rebalanceSuggestion(current)
		return Reply{
			Content: "I can help you rebalance your portfolio. Based on recent market conditions, " +
				"I recommend increasing your allocation to AI tokens by 5% and reducing your exposure " +
				"to Meme tokens. Would you like me to make these changes for you?",
			Suggestion: &suggestion,
		}
	case strings.Contains(lower, "market") || strings.Contains(lower, "trend"):
		return Reply{
			Content: "Current market trends show increased institutional interest in AI tokens. " +
				"The meme sector is experiencing high volatility. Would you like a detailed analysis?",
			Suggestion: &Suggestion{
				Kind:        KindAnalysis,
				Description: "View Market Analysis",
			},
		}
	default:
		return Reply{
			Content: "I understand you're interested in optimizing your investment strategy. " +
				"Based on your portfolio, I recommend focusing on AI tokens which are showing " +
				"strong fundamentals.",
		}
	}
}

func rebalanceSuggestion(current []models.AllocationCategory) Suggestion {
	ai, meme := lookup(current, "ai"), lookup(current, "meme")
	return Suggestion{
		Kind:        KindRebalance,
		Description: "Rebalance portfolio: +5% AI, -5% Meme",
		Changes: []Change{
			{Category: "ai", From: ai, To: ai + 5},
			{Category: "meme", From: meme, To: max(meme-5, 0)},
		},
	}
}

func lookup(set []models.AllocationCategory, id string) int {
	for _, c := range set {
		if c.ID == id {
			return c.Allocation
		}
	}
	return 0
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
