package config

import (
	"fmt"
	"math"

	"github.com/BurntSushi/toml"
)

// numRarities is the number of rarity tiers (common, rare, legendary).
// Every per-rarity table must carry exactly one entry per tier.
const numRarities = 3

// Config is the full process configuration. Game constants can be overridden
// from a TOML file; everything defaults to the shipped values.
type Config struct {
	Game Game `toml:"game"`
}

// Game holds the economy constants. Loaded once at startup, validated, and
// treated as immutable for the process lifetime.
type Game struct {
	WaterCost      float64 `toml:"water_cost"`
	FertilizerCost float64 `toml:"fertilizer_cost"`
	PlantCost      float64 `toml:"plant_cost"`

	InitialMoney      float64 `toml:"initial_money"`
	InitialPlantLimit int     `toml:"initial_plant_limit"`
	InitialWeather    int     `toml:"initial_weather"`

	PlantLimitBaseCost       int     `toml:"plant_limit_base_cost"`
	PlantLimitCostMultiplier float64 `toml:"plant_limit_cost_multiplier"`
	PlantLimitIncrease       int     `toml:"plant_limit_increase"`

	Stage0GrowthTime int `toml:"stage0_growth_time"`

	// Indexed by rarity: 0=common, 1=rare, 2=legendary.
	RarityWeights     []float64 `toml:"rarity_weights"`
	Stage1GrowthTimes []int     `toml:"stage1_growth_times"`
	FertilizerNeeds   []int     `toml:"fertilizer_needs"`
	Stage1SellValues  []int     `toml:"stage1_sell_values"`
	Stage2SellValues  []int     `toml:"stage2_sell_values"`

	// Species pools: plant type -> per-rarity list of concrete species.
	Species map[string][][]string `toml:"species"`
}

// Default returns the shipped game constants.
func Default() Config {
	return Config{
		Game: Game{
			WaterCost:      25,
			FertilizerCost: 25,
			PlantCost:      100,

			InitialMoney:      250,
			InitialPlantLimit: 25,
			InitialWeather:    0,

			PlantLimitBaseCost:       1000,
			PlantLimitCostMultiplier: 1.1,
			PlantLimitIncrease:       25,

			Stage0GrowthTime: 30,

			RarityWeights:     []float64{0.79, 0.20, 0.01},
			Stage1GrowthTimes: []int{60, 120, 360},
			FertilizerNeeds:   []int{1, 2, 5},
			Stage1SellValues:  []int{50, 100, 250},
			Stage2SellValues:  []int{100, 200, 500},

			Species: map[string][][]string{
				"fungi": {
					{"brown_mushroom"},
					{"red_mushroom"},
					{"mario_mushroom"},
				},
				"rose": {
					{"red_rose"},
					{"pink_rose", "white_rose"},
					{"withered_rose"},
				},
				"berry": {
					{"blueberry"},
					{"strawberry"},
					{"ancient_fruit"},
				},
			},
		},
	}
}

// Load returns the default config, overlaid with the TOML file at path when
// path is non-empty, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	if err := cfg.Game.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants the engine assumes at runtime so that a
// broken table fails the process at startup instead of mid-operation.
func (g *Game) Validate() error {
	if len(g.RarityWeights) != numRarities {
		return fmt.Errorf("rarity_weights must have %d entries, got %d", numRarities, len(g.RarityWeights))
	}
	sum := 0.0
	for i, w := range g.RarityWeights {
		if w < 0 {
			return fmt.Errorf("rarity_weights[%d] is negative: %v", i, w)
		}
		sum += w
	}
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("rarity_weights must sum to 1, got %v", sum)
	}

	for name, table := range map[string]int{
		"stage1_growth_times": len(g.Stage1GrowthTimes),
		"fertilizer_needs":    len(g.FertilizerNeeds),
		"stage1_sell_values":  len(g.Stage1SellValues),
		"stage2_sell_values":  len(g.Stage2SellValues),
	} {
		if table != numRarities {
			return fmt.Errorf("%s must have %d entries, got %d", name, numRarities, table)
		}
	}

	if len(g.Species) == 0 {
		return fmt.Errorf("species pools are empty")
	}
	for plantType, pools := range g.Species {
		if len(pools) != numRarities {
			return fmt.Errorf("species.%s must have %d rarity pools, got %d", plantType, numRarities, len(pools))
		}
		for rarity, pool := range pools {
			if len(pool) == 0 {
				return fmt.Errorf("species.%s rarity %d pool is empty", plantType, rarity)
			}
		}
	}

	if g.WaterCost < 0 || g.FertilizerCost < 0 || g.PlantCost < 0 {
		return fmt.Errorf("costs must be non-negative")
	}
	if g.InitialMoney < 0 {
		return fmt.Errorf("initial_money must be non-negative")
	}
	if g.InitialPlantLimit <= 0 || g.PlantLimitIncrease <= 0 {
		return fmt.Errorf("initial_plant_limit and plant_limit_increase must be positive")
	}
	if g.PlantLimitBaseCost <= 0 || g.PlantLimitCostMultiplier < 1 {
		return fmt.Errorf("plant_limit_base_cost must be positive and plant_limit_cost_multiplier >= 1")
	}
	if g.InitialWeather < 0 || g.InitialWeather > 2 {
		return fmt.Errorf("initial_weather must be in [0,2]")
	}
	if g.Stage0GrowthTime <= 0 {
		return fmt.Errorf("stage0_growth_time must be positive")
	}
	return nil
}
