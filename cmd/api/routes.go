package main

import (
	"net/http"

	"github.com/XDTerminated/pomopatch-hackwashu-2025/internal/handlers"
	"github.com/XDTerminated/pomopatch-hackwashu-2025/internal/middleware"
)

// RegisterRoutes wires the REST surface. Reads are public; every mutating
// route goes through RequireIdentity, and the handler checks the verified
// email against the {email} path segment.
func RegisterRoutes(
	mux *http.ServeMux,
	verifier middleware.TokenVerifier,
	users *handlers.UserHandler,
	plants *handlers.PlantHandler,
) {
	auth := middleware.RequireIdentity(verifier)

	// Accounts
	mux.Handle("POST /users/{$}", auth(http.HandlerFunc(users.Create)))
	mux.HandleFunc("GET /users", users.List)
	mux.HandleFunc("GET /users/{email}", users.Get)
	mux.HandleFunc("GET /users/by-username/{username}/{tag}", users.GetByUsername)
	mux.Handle("PATCH /users/{email}/username", auth(http.HandlerFunc(users.Rename)))
	mux.Handle("PATCH /users/{email}/money", auth(http.HandlerFunc(users.ChangeMoney)))
	mux.Handle("POST /users/{email}/increase-plant-limit", auth(http.HandlerFunc(users.IncreasePlantLimit)))
	mux.Handle("POST /users/{email}/cycle-weather", auth(http.HandlerFunc(users.CycleWeather)))
	mux.Handle("DELETE /users/{email}", auth(http.HandlerFunc(users.Delete)))

	// Plants
	mux.Handle("POST /users/{email}/plants/{$}", auth(http.HandlerFunc(plants.Create)))
	mux.HandleFunc("GET /users/{email}/plants", plants.List)
	mux.HandleFunc("GET /users/{email}/plants/{id}", plants.Get)
	mux.Handle("PATCH /users/{email}/plants/{id}/position", auth(http.HandlerFunc(plants.Move)))
	mux.Handle("PATCH /users/{email}/plants/{id}/apply-water", auth(http.HandlerFunc(plants.Water)))
	mux.Handle("PATCH /users/{email}/plants/{id}/apply-fertilizer", auth(http.HandlerFunc(plants.Fertilize)))
	mux.Handle("PATCH /users/{email}/plants/{id}/grow", auth(http.HandlerFunc(plants.Grow)))
	mux.Handle("DELETE /users/{email}/plants/{id}/sell", auth(http.HandlerFunc(plants.Sell)))
}
