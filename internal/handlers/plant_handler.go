package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/XDTerminated/pomopatch-hackwashu-2025/internal/game"
	"github.com/XDTerminated/pomopatch-hackwashu-2025/internal/middleware"
	"github.com/XDTerminated/pomopatch-hackwashu-2025/internal/models"
)

// PlantOps is the lifecycle service surface the handler needs.
type PlantOps interface {
	Create(ctx context.Context, email, plantType string, x, y float64) (*game.CreatePlantResult, error)
	Get(ctx context.Context, email string, id uuid.UUID) (*models.Plant, error)
	List(ctx context.Context, email string) ([]*models.Plant, error)
	Move(ctx context.Context, email string, id uuid.UUID, x, y float64) error
	Water(ctx context.Context, email string, id uuid.UUID) (*game.WaterResult, error)
	Fertilize(ctx context.Context, email string, id uuid.UUID) (*game.FertilizeResult, error)
	Grow(ctx context.Context, email string, id uuid.UUID, elapsed int) (*game.GrowResult, error)
	Sell(ctx context.Context, email string, id uuid.UUID) (*game.SellResult, error)
}

// PlantHandler serves /users/{email}/plants endpoints.
type PlantHandler struct {
	Plants PlantOps
	Logger *slog.Logger
}

type createPlantRequest struct {
	PlantType string  `json:"plant_type"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

type positionRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type growRequest struct {
	Time int `json:"time"`
}

// requireOwner rejects requests whose verified identity differs from the
// target identity in the path. Returns the email, or "" after responding.
func requireOwner(w http.ResponseWriter, r *http.Request) string {
	email := r.PathValue("email")
	if middleware.EmailFromCtx(r.Context()) != email {
		writeError(w, http.StatusForbidden, "cannot modify another user's plants")
		return ""
	}
	return email
}

// plantID parses the plant UUID from the path. Responds 400 on failure.
func plantID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid plant id")
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /users/{email}/plants/.
func (h *PlantHandler) Create(w http.ResponseWriter, r *http.Request) {
	email := requireOwner(w, r)
	if email == "" {
		return
	}
	var req createPlantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	res, err := h.Plants.Create(r.Context(), email, req.PlantType, req.X, req.Y)
	if err != nil {
		writeServiceError(w, h.Logger, "create plant", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":       "Plant created successfully",
		"plant_id":      res.Plant.ID.String(),
		"plant_type":    res.Plant.Type,
		"plant_species": res.Plant.Species,
		"size":          res.Plant.Size,
		"rarity":        res.Plant.Rarity,
		"money_spent":   res.MoneySpent,
		"new_balance":   res.NewBalance,
	})
}

// List handles GET /users/{email}/plants.
func (h *PlantHandler) List(w http.ResponseWriter, r *http.Request) {
	plants, err := h.Plants.List(r.Context(), r.PathValue("email"))
	if err != nil {
		writeServiceError(w, h.Logger, "list plants", err)
		return
	}
	if plants == nil {
		plants = []*models.Plant{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"plants": plants})
}

// Get handles GET /users/{email}/plants/{id}.
func (h *PlantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := plantID(w, r)
	if !ok {
		return
	}
	plant, err := h.Plants.Get(r.Context(), r.PathValue("email"), id)
	if err != nil {
		writeServiceError(w, h.Logger, "get plant", err)
		return
	}
	writeJSON(w, http.StatusOK, plant)
}

// Move handles PATCH /users/{email}/plants/{id}/position.
func (h *PlantHandler) Move(w http.ResponseWriter, r *http.Request) {
	email := requireOwner(w, r)
	if email == "" {
		return
	}
	id, ok := plantID(w, r)
	if !ok {
		return
	}
	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := h.Plants.Move(r.Context(), email, id, req.X, req.Y); err != nil {
		writeServiceError(w, h.Logger, "move plant", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Plant moved successfully",
		"x":       req.X,
		"y":       req.Y,
	})
}

// Water handles PATCH /users/{email}/plants/{id}/apply-water.
func (h *PlantHandler) Water(w http.ResponseWriter, r *http.Request) {
	email := requireOwner(w, r)
	if email == "" {
		return
	}
	id, ok := plantID(w, r)
	if !ok {
		return
	}
	res, err := h.Plants.Water(r.Context(), email, id)
	if err != nil {
		writeServiceError(w, h.Logger, "apply water", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":               "Water applied, plant started growing",
		"cost":                  res.Cost,
		"new_money":             res.NewBalance,
		"growth_time_remaining": res.GrowthTimeRemaining,
	})
}

// Fertilize handles PATCH /users/{email}/plants/{id}/apply-fertilizer.
func (h *PlantHandler) Fertilize(w http.ResponseWriter, r *http.Request) {
	email := requireOwner(w, r)
	if email == "" {
		return
	}
	id, ok := plantID(w, r)
	if !ok {
		return
	}
	res, err := h.Plants.Fertilize(r.Context(), email, id)
	if err != nil {
		writeServiceError(w, h.Logger, "apply fertilizer", err)
		return
	}
	msg := "Fertilizer applied"
	if res.GrowthTimeRemaining != nil {
		msg = "Fertilizer applied, plant started growing"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":               msg,
		"cost":                  res.Cost,
		"new_money":             res.NewBalance,
		"fertilizer_remaining":  res.FertilizerRemaining,
		"growth_time_remaining": res.GrowthTimeRemaining,
	})
}

// Grow handles PATCH /users/{email}/plants/{id}/grow.
func (h *PlantHandler) Grow(w http.ResponseWriter, r *http.Request) {
	email := requireOwner(w, r)
	if email == "" {
		return
	}
	id, ok := plantID(w, r)
	if !ok {
		return
	}
	var req growRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	res, err := h.Plants.Grow(r.Context(), email, id, req.Time)
	if err != nil {
		writeServiceError(w, h.Logger, "grow plant", err)
		return
	}
	if res.StageAdvanced {
		writeJSON(w, http.StatusOK, map[string]any{
			"message":               "Plant growth completed and advanced to next stage",
			"growth_time_remaining": nil,
			"new_stage":             res.NewStage,
			"stage_advanced":        true,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":               "Plant growth updated",
		"growth_time_remaining": res.GrowthTimeRemaining,
		"stage_advanced":        false,
	})
}

// Sell handles DELETE /users/{email}/plants/{id}/sell.
func (h *PlantHandler) Sell(w http.ResponseWriter, r *http.Request) {
	email := requireOwner(w, r)
	if email == "" {
		return
	}
	id, ok := plantID(w, r)
	if !ok {
		return
	}
	res, err := h.Plants.Sell(r.Context(), email, id)
	if err != nil {
		writeServiceError(w, h.Logger, "sell plant", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Plant sold successfully",
		"money_earned": res.MoneyEarned,
		"new_balance":  res.NewBalance,
	})
}
