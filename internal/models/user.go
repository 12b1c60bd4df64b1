package models

// User is an account row. The email is the stable identity assigned by the
// external identity layer; the username is the mutable display identity and
// must stay unique.
type User struct {
	Email      string  `json:"email"`
	Username   string  `json:"username"`
	Money      float64 `json:"money"`
	PlantLimit int     `json:"plant_limit"`
	Weather    int     `json:"weather"`
}

// Weather cycles 0 -> 1 -> 2 -> 0.
const WeatherStates = 3
