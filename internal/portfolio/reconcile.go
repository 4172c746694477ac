package portfolio

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"atoiota/internal/models"
	"atoiota/pkg/evm"
)

// Reconcile re-fetches the on-chain allocation set and replace-commits the
// local portfolio when the chain disagrees. Empty or malformed chain state is
// tolerated: the last known committed set stays in place.
func Reconcile(ctx context.Context, store *Store, chain evm.Writer) error {
	categories, percentages, err := chain.GetAllocations(ctx)
	if err != nil {
		return err
	}
	if len(categories) == 0 || len(categories) != len(percentages) {
		logger.Debugf("Skipping reconcile: chain returned %d categories, %d percentages",
			len(categories), len(percentages))
		return nil
	}

	set := FromChain(categories, percentages)
	if !IsBalanced(set) {
		logger.Warnf("Skipping reconcile: on-chain total is %d", Sum(set))
		return nil
	}

	if equalAllocations(set, store.Committed()) {
		return nil
	}

	logger.Info("On-chain allocations diverged from local snapshot, replacing")
	return store.Replace(set)
}

// FromChain maps the contract's parallel arrays into categories, filling in
// display names and colors for known ids.
func FromChain(categories []string, percentages []uint64) []models.AllocationCategory {
	set := make([]models.AllocationCategory, len(categories))
	for i, id := range categories {
		name, ok := CategoryNames[id]
		if !ok {
			name = id
		}
		color, ok := CategoryColors[id]
		if !ok {
			color = "#6B7280"
		}
		set[i] = models.AllocationCategory{
			ID:         id,
			Name:       name,
			Color:      color,
			Allocation: int(percentages[i]),
		}
	}
	return set
}

func equalAllocations(a, b []models.AllocationCategory) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Allocation != b[i].Allocation {
			return false
		}
	}
	return true
}
