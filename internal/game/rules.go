package game

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// Roller draws plant attributes from a shared random source. Production
// wiring seeds it from the wall clock; tests pass a fixed seed. Safe for
// concurrent use.
type Roller struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewRoller(r *rand.Rand) *Roller {
	return &Roller{r: r}
}

// Rarity partitions one uniform [0,1) draw by the cumulative weights:
// with the shipped {0.79, 0.20, 0.01}, draws below 0.79 are common, below
// 0.99 rare, and the rest legendary.
func (ro *Roller) Rarity(weights []float64) int {
	ro.mu.Lock()
	u := ro.r.Float64()
	ro.mu.Unlock()

	acc := 0.0
	for i := 0; i < len(weights)-1; i++ {
		acc += weights[i]
		if u < acc {
			return i
		}
	}
	return len(weights) - 1
}

// Species picks uniformly from the configured pool for (plantType, rarity).
func (ro *Roller) Species(pools map[string][][]string, plantType string, rarity int) (string, error) {
	byRarity, ok := pools[plantType]
	if !ok || rarity < 0 || rarity >= len(byRarity) || len(byRarity[rarity]) == 0 {
		return "", fmt.Errorf("%w: no species pool for type %q rarity %d", ErrConfiguration, plantType, rarity)
	}
	pool := byRarity[rarity]

	ro.mu.Lock()
	i := ro.r.Intn(len(pool))
	ro.mu.Unlock()
	return pool[i], nil
}

// Size samples a normal distribution (mean 0.5, stdev 0.2) clamped to [0,1].
func (ro *Roller) Size() float64 {
	ro.mu.Lock()
	v := ro.r.NormFloat64()*0.2 + 0.5
	ro.mu.Unlock()
	return math.Max(0, math.Min(1, v))
}

// UpgradeCost prices the next plant-limit purchase from the account's
// current limit: base * multiplier^numUpgrades, truncated, then rounded to
// the nearest 100 using round-half-to-even. The rounding rule is part of the
// player-visible pricing contract and must not change. Pure function,
// bit-for-bit reproducible for the same integer inputs.
func UpgradeCost(currentLimit, initialLimit, increment, base int, multiplier float64) int {
	numUpgrades := (currentLimit - initialLimit) / increment
	raw := math.Trunc(float64(base) * math.Pow(multiplier, float64(numUpgrades)))
	return int(math.RoundToEven(raw/100)) * 100
}
