package projects

import (
	"cmp"
	"slices"
)

// Sort orders projects in place by policy. The sort is stable. Unset
// counts sort below every set value. For PolicyManual, manualIndex gives
// each project's position in the manual list; projects without a position
// follow all positioned ones.
func Sort(projects []Project, policy SortPolicy, manualIndex map[string]int) {
	var less func(a, b Project) int
	switch policy {
	case PolicyStars:
		less = func(a, b Project) int { return -compareCount(a.Stars, b.Stars) }
	case PolicyForks:
		less = func(a, b Project) int { return -compareCount(a.Forks, b.Forks) }
	case PolicyStarsThenForks:
		less = func(a, b Project) int {
			if c := compareCount(a.Stars, b.Stars); c != 0 {
				return -c
			}
			return -compareCount(a.Forks, b.Forks)
		}
	case PolicyForksThenStars:
		less = func(a, b Project) int {
			if c := compareCount(a.Forks, b.Forks); c != 0 {
				return -c
			}
			return -compareCount(a.Stars, b.Stars)
		}
	case PolicyManual:
		less = func(a, b Project) int {
			ia, okA := manualIndex[a.Name]
			ib, okB := manualIndex[b.Name]
			switch {
			case okA && okB:
				return cmp.Compare(ia, ib)
			case okA:
				return -1
			case okB:
				return 1
			}
			return 0
		}
	default:
		return
	}
	slices.SortStableFunc(projects, less)
}

// compareCount orders optional counts with nil lowest.
func compareCount(a, b *uint64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(*a, *b)
}
