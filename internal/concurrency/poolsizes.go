package concurrency

import (
	"fmt"
	"runtime"

	"dev.helix.gds/internal/errs"
)

// PoolSizes is an immutable (core, max) pair, 1 <= core <= max.
type PoolSizes struct {
	core int
	max  int
}

// NewPoolSizes validates and constructs a PoolSizes pair.
func NewPoolSizes(core, max int) (PoolSizes, error) {
	if core < 1 {
		return PoolSizes{}, &errs.InvalidArgumentError{Field: "core", Message: fmt.Sprintf("core must be >= 1, got %d", core)}
	}
	if max < core {
		return PoolSizes{}, &errs.InvalidArgumentError{Field: "max", Message: fmt.Sprintf("max (%d) must be >= core (%d)", max, core)}
	}
	return PoolSizes{core: core, max: max}, nil
}

// FixedPoolSizes returns a PoolSizes with core == max == k.
func FixedPoolSizes(k int) (PoolSizes, error) {
	return NewPoolSizes(k, k)
}

// CPUDerivedPoolSizes returns core == max == max(1, floor(cpuCount * factor)).
func CPUDerivedPoolSizes(factor float64) PoolSizes {
	n := int(float64(runtime.NumCPU()) * factor)
	if n < 1 {
		n = 1
	}
	return PoolSizes{core: n, max: n}
}

// DefaultPoolSizes is the hard-wired fallback: core = max = 4.
func DefaultPoolSizes() PoolSizes {
	return PoolSizes{core: 4, max: 4}
}

// Core returns the pool's core worker count.
func (p PoolSizes) Core() int { return p.core }

// Max returns the pool's maximum worker count.
func (p PoolSizes) Max() int { return p.max }

// PoolSizesProvider is the external collaborator priority-chain used to
// pick a PoolSizes: the highest-priority provider whose Build reports ok
// wins, and a default provider at minimum priority always
// exists as a fallback.
type PoolSizesProvider interface {
	// Priority orders providers; higher wins.
	Priority() int
	// Build returns a PoolSizes, or (zero, false) to defer to the next
	// provider in priority order.
	Build() (PoolSizes, bool)
}

type defaultPoolSizesProvider struct{}

func (defaultPoolSizesProvider) Priority() int { return -1 << 30 }
func (defaultPoolSizesProvider) Build() (PoolSizes, bool) {
	return DefaultPoolSizes(), true
}

// ResolvePoolSizes walks providers in descending priority order and
// returns the first non-deferred result. A default, minimum-priority
// provider is always consulted last so ResolvePoolSizes never fails.
func ResolvePoolSizes(providers ...PoolSizesProvider) PoolSizes {
	ordered := append(append([]PoolSizesProvider{}, providers...), defaultPoolSizesProvider{})
	for i := 0; i < len(ordered); i++ {
		maxIdx := i
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].Priority() > ordered[maxIdx].Priority() {
				maxIdx = j
			}
		}
		ordered[i], ordered[maxIdx] = ordered[maxIdx], ordered[i]
	}
	for _, p := range ordered {
		if sizes, ok := p.Build(); ok {
			return sizes
		}
	}
	// Unreachable: defaultPoolSizesProvider always commits.
	return DefaultPoolSizes()
}
