package service

import (
	"fmt"

	"github.com/candemiralp/leadflow/internal/domain"
)

// Allocation is the computed fair split of a distribution pass.
type Allocation struct {
	ItemsPerAgent  int
	RemainderItems int
	Counts         []int
}

// SplitCounts computes the per-agent item counts for a fair split of
// itemCount items across agentCount agents. The returned slice has exactly
// agentCount entries, sums to itemCount, is non-increasing, and no two
// entries differ by more than 1: the first itemCount%agentCount agents
// receive one extra item. Pure function, safe for unlimited parallel use.
func SplitCounts(itemCount, agentCount int) []int {
	if itemCount < 1 || agentCount < 1 {
		return nil
	}

	base := itemCount / agentCount
	remainder := itemCount % agentCount

	counts := make([]int, agentCount)
	for i := range counts {
		counts[i] = base
		if i < remainder {
			counts[i]++
		}
	}
	return counts
}

// ComputeAllocation wraps SplitCounts with its base/remainder breakdown.
func ComputeAllocation(itemCount, agentCount int) (Allocation, error) {
	if itemCount < 1 {
		return Allocation{}, fmt.Errorf("%w: item count must be >= 1", domain.ErrValidation)
	}
	if agentCount < 1 {
		return Allocation{}, fmt.Errorf("%w: agent count must be >= 1", domain.ErrValidation)
	}

	return Allocation{
		ItemsPerAgent:  itemCount / agentCount,
		RemainderItems: itemCount % agentCount,
		Counts:         SplitCounts(itemCount, agentCount),
	}, nil
}
