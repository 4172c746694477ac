package portfolio

import (
	"encoding/json"
	"math"
	"sync"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"atoiota/internal/models"
)

// DefaultAllocations returns the seed allocation set used when neither a
// persisted snapshot nor on-chain state is available.
func DefaultAllocations() []models.AllocationCategory {
	return []models.AllocationCategory{
		{ID: "ai", Name: "AI & DeFi", Color: "#8B5CF6", Allocation: 15},
		{ID: "meme", Name: "Meme & NFT", Color: "#EC4899", Allocation: 10},
		{ID: "rwa", Name: "RWA", Color: "#0EA5E9", Allocation: 15},
		{ID: "bigcap", Name: "Big Cap", Color: "#10B981", Allocation: 25},
		{ID: "defi", Name: "DeFi", Color: "#F59E0B", Allocation: 15},
		{ID: "l1", Name: "Layer 1", Color: "#EF4444", Allocation: 15},
		{ID: "stablecoin", Name: "Stablecoins", Color: "#14B8A6", Allocation: 5},
	}
}

// CategoryNames maps contract category ids to display labels.
var CategoryNames = map[string]string{
	"ai":         "AI & DeFi",
	"meme":       "Meme & NFT",
	"rwa":        "RWA",
	"bigcap":     "Big Cap",
	"defi":       "DeFi",
	"l1":         "Layer 1",
	"stablecoin": "Stablecoins",
}

// CategoryColors maps contract category ids to display colors.
var CategoryColors = map[string]string{
	"ai":         "#8B5CF6",
	"meme":       "#EC4899",
	"rwa":        "#0EA5E9",
	"bigcap":     "#10B981",
	"defi":       "#F59E0B",
	"l1":         "#EF4444",
	"stablecoin": "#14B8A6",
}

// Sum returns the allocation total of a set.
func Sum(set []models.AllocationCategory) int {
	total := 0
	for _, c := range set {
		total += c.Allocation
	}
	return total
}

// IsBalanced reports whether a set sums to exactly 100.
func IsBalanced(set []models.AllocationCategory) bool {
	return Sum(set) == 100
}

// AutoBalance rescales every allocation by 100/sum and rounds to the nearest
// integer. Rounding can leave the total off by a few points; the residual is
// added entirely to the first category, so the correction is deterministic for
// a given input order. A zero-sum input fails with INVALID_STATE and the input
// is left untouched.
func AutoBalance(set []models.AllocationCategory) ([]models.AllocationCategory, error) {
	total := Sum(set)
	if total == 0 {
		return nil, NewError(CodeInvalidState, "cannot auto-balance: total allocation is zero")
	}

	out := make([]models.AllocationCategory, len(set))
	copy(out, set)
	if total == 100 {
		return out, nil
	}

	scale := 100.0 / float64(total)
	for i := range out {
		out[i].Allocation = int(math.Round(float64(out[i].Allocation) * scale))
	}

	if residual := 100 - Sum(out); residual != 0 && len(out) > 0 {
		out[0].Allocation += residual
	}
	return out, nil
}

// Store holds the committed portfolio and an optional pending draft.
//
// The committed set always sums to 100; the draft may be unbalanced while the
// user edits it. Commit and Replace are the only paths that change the
// committed set, and both persist a snapshot row.
type Store struct {
	mu        sync.Mutex
	db        *gorm.DB
	committed []models.AllocationCategory
	draft     []models.AllocationCategory
}

// NewStore creates a store seeded from the latest persisted snapshot, falling
// back to the default set. db may be nil, in which case nothing is persisted.
func NewStore(db *gorm.DB) *Store {
	s := &Store{db: db, committed: DefaultAllocations()}
	if db == nil {
		return s
	}

	var snap models.PortfolioSnapshot
	if err := db.Order("id DESC").First(&snap).Error; err != nil {
		return s
	}
	var set []models.AllocationCategory
	if err := json.Unmarshal([]byte(snap.Categories), &set); err != nil {
		logger.Warnf("Ignoring unreadable portfolio snapshot %d: %v", snap.ID, err)
		return s
	}
	if IsBalanced(set) {
		s.committed = set
	}
	return s
}

// Committed returns a copy of the committed allocation set.
func (s *Store) Committed() []models.AllocationCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSet(s.committed)
}

// Draft returns a copy of the pending draft, or nil when there is none.
func (s *Store) Draft() []models.AllocationCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return nil
	}
	return cloneSet(s.draft)
}

// SetDraftValue replaces a single category's allocation in the draft, creating
// the draft from the committed set on first edit. The resulting draft may
// legally be unbalanced; no normalization happens here.
func (s *Store) SetDraftValue(categoryID string, value int) error {
	if value < 0 || value > 100 {
		return NewError(CodeInvalidAllocation, "allocation must be between 0 and 100, got %d", value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.draft
	if base == nil {
		base = s.committed
	}
	next := cloneSet(base)
	found := false
	for i := range next {
		if next[i].ID == categoryID {
			next[i].Allocation = value
			found = true
			break
		}
	}
	if !found {
		return NewError(CodeNotFound, "unknown category %q", categoryID)
	}
	s.draft = next
	return nil
}

// SetDraft replaces the whole draft. Used by the advisory feed, which
// suggests several changes at once.
func (s *Store) SetDraft(set []models.AllocationCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = cloneSet(set)
}

// AutoBalanceDraft runs AutoBalance over the current draft (or the committed
// set when no draft exists) and stores the result as the draft.
func (s *Store) AutoBalanceDraft() ([]models.AllocationCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.draft
	if base == nil {
		base = s.committed
	}
	balanced, err := AutoBalance(base)
	if err != nil {
		return nil, err
	}
	s.draft = balanced
	return cloneSet(balanced), nil
}

// ResetDraft discards the draft. Calling it with no draft is a no-op.
func (s *Store) ResetDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = nil
}

// Commit replaces the committed set with the given one and clears the draft.
// Only the submission pipeline calls this, on the pending-to-confirmed edge.
// The snapshot is persisted first: a storage failure leaves the in-memory
// state at its pre-attempt value.
func (s *Store) Commit(set []models.AllocationCategory, txHash string) error {
	if !IsBalanced(set) {
		return NewError(CodeInvalidAllocation, "refusing to commit set with total %d", Sum(set))
	}

	if err := s.persist(set, txHash); err != nil {
		return err
	}

	s.mu.Lock()
	s.committed = cloneSet(set)
	s.draft = nil
	s.mu.Unlock()
	return nil
}

// Replace swaps the committed set without touching the draft. Used by the
// reconciliation worker when on-chain state diverges from the local snapshot.
func (s *Store) Replace(set []models.AllocationCategory) error {
	if !IsBalanced(set) {
		return NewError(CodeInvalidAllocation, "refusing to replace with set with total %d", Sum(set))
	}

	if err := s.persist(set, ""); err != nil {
		return err
	}

	s.mu.Lock()
	s.committed = cloneSet(set)
	s.mu.Unlock()
	return nil
}

func (s *Store) persist(set []models.AllocationCategory, txHash string) error {
	if s.db == nil {
		return nil
	}
	data, err := json.Marshal(set)
	if err != nil {
		return err
	}
	return s.db.Create(&models.PortfolioSnapshot{
		Categories: string(data),
		TxHash:     txHash,
	}).Error
}

func cloneSet(set []models.AllocationCategory) []models.AllocationCategory {
	out := make([]models.AllocationCategory, len(set))
	copy(out, set)
	return out
}
