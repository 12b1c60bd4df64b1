package models

import "github.com/google/uuid"

// Rarity tiers. Fixed at creation; drive species pool, growth time,
// fertilizer need and sell value.
const (
	RarityCommon    = 0
	RarityRare      = 1
	RarityLegendary = 2
)

// Growth stages. Monotonically increasing, terminal at StageMature.
const (
	StageSeedling = 0
	StageSprout   = 1
	StageMature   = 2
)

// Plant is a plant row. GrowthTimeRemaining is set only while the plant is
// counting down toward the next stage; FertilizerRemaining is set only while
// the plant is at stage 1 waiting for fertilizer. The two are never set at
// the same time.
type Plant struct {
	ID                  uuid.UUID `json:"plant_id"`
	OwnerEmail          string    `json:"email"`
	Type                string    `json:"plant_type"`
	Species             string    `json:"plant_species"`
	Rarity              int       `json:"rarity"`
	Size                float64   `json:"size"`
	Stage               int       `json:"stage"`
	GrowthTimeRemaining *int      `json:"growth_time_remaining"`
	FertilizerRemaining *int      `json:"fertilizer_remaining"`
	X                   float64   `json:"x"`
	Y                   float64   `json:"y"`
}

// LifecycleState is the derived state-machine view over the stage and the
// two optional counters.
type LifecycleState int

const (
	StateAwaitingWater LifecycleState = iota
	StateGrowing
	StateAwaitingFertilizer
	StateMature
)

func (s LifecycleState) String() string {
	switch s {
	case StateAwaitingWater:
		return "awaiting_water"
	case StateGrowing:
		return "growing"
	case StateAwaitingFertilizer:
		return "awaiting_fertilizer"
	case StateMature:
		return "mature"
	}
	return "unknown"
}

// State reports which lifecycle state the plant is in. At most one of
// growing / awaiting water / awaiting fertilizer holds at a time.
func (p *Plant) State() LifecycleState {
	switch {
	case p.GrowthTimeRemaining != nil:
		return StateGrowing
	case p.Stage == StageSeedling:
		return StateAwaitingWater
	case p.Stage == StageSprout && p.FertilizerRemaining != nil && *p.FertilizerRemaining > 0:
		return StateAwaitingFertilizer
	default:
		return StateMature
	}
}
