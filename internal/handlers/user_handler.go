package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/XDTerminated/pomopatch-hackwashu-2025/internal/game"
	"github.com/XDTerminated/pomopatch-hackwashu-2025/internal/middleware"
	"github.com/XDTerminated/pomopatch-hackwashu-2025/internal/models"
)

// AccountOps is the account service surface the handler needs.
type AccountOps interface {
	Create(ctx context.Context, email string) (*models.User, error)
	Get(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Rename(ctx context.Context, email, username string) error
	AdjustMoney(ctx context.Context, email string, amount float64) (float64, error)
	IncreasePlantLimit(ctx context.Context, email string) (*game.LimitUpgrade, error)
	CycleWeather(ctx context.Context, email string) (previous, current int, err error)
	Delete(ctx context.Context, email string) error
}

// UserHandler serves /users endpoints.
type UserHandler struct {
	Accounts AccountOps
	Logger   *slog.Logger
}

type createUserRequest struct {
	Email string `json:"email"`
}

type usernameUpdateRequest struct {
	NewUsername string `json:"new_username"`
}

type moneyChangeRequest struct {
	Amount float64 `json:"amount"`
}

// requireSelf rejects requests whose verified identity differs from the
// target identity in the path. Returns the email, or "" after responding.
func requireSelf(w http.ResponseWriter, r *http.Request, action string) string {
	email := r.PathValue("email")
	if middleware.EmailFromCtx(r.Context()) != email {
		writeError(w, http.StatusForbidden, "cannot "+action+" another user's account")
		return ""
	}
	return email
}

// Create handles POST /users/.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if middleware.EmailFromCtx(r.Context()) != req.Email {
		writeError(w, http.StatusForbidden, "cannot create user with different email")
		return
	}
	u, err := h.Accounts.Create(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, h.Logger, "create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "User created successfully",
		"email":       u.Email,
		"username":    u.Username,
		"money":       u.Money,
		"plant_limit": u.PlantLimit,
		"weather":     u.Weather,
	})
}

// List handles GET /users: every account ordered by money descending.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Accounts.List(r.Context())
	if err != nil {
		writeServiceError(w, h.Logger, "list users", err)
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// Get handles GET /users/{email}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.Accounts.Get(r.Context(), r.PathValue("email"))
	if err != nil {
		writeServiceError(w, h.Logger, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// GetByUsername handles GET /users/by-username/{username}/{tag}.
func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	full := r.PathValue("username") + "#" + r.PathValue("tag")
	u, err := h.Accounts.GetByUsername(r.Context(), full)
	if err != nil {
		writeServiceError(w, h.Logger, "get user by username", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Rename handles PATCH /users/{email}/username.
func (h *UserHandler) Rename(w http.ResponseWriter, r *http.Request) {
	email := requireSelf(w, r, "rename")
	if email == "" {
		return
	}
	var req usernameUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := h.Accounts.Rename(r.Context(), email, req.NewUsername); err != nil {
		writeServiceError(w, h.Logger, "rename user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Username updated successfully",
		"new_username": req.NewUsername,
	})
}

// ChangeMoney handles PATCH /users/{email}/money.
func (h *UserHandler) ChangeMoney(w http.ResponseWriter, r *http.Request) {
	email := requireSelf(w, r, "modify")
	if email == "" {
		return
	}
	var req moneyChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	newBalance, err := h.Accounts.AdjustMoney(r.Context(), email, req.Amount)
	if err != nil {
		writeServiceError(w, h.Logger, "change money", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Money updated successfully",
		"new_balance": newBalance,
	})
}

// IncreasePlantLimit handles POST /users/{email}/increase-plant-limit.
func (h *UserHandler) IncreasePlantLimit(w http.ResponseWriter, r *http.Request) {
	email := requireSelf(w, r, "modify")
	if email == "" {
		return
	}
	res, err := h.Accounts.IncreasePlantLimit(r.Context(), email)
	if err != nil {
		writeServiceError(w, h.Logger, "increase plant limit", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":           "Plant limit increased successfully",
		"cost_paid":         res.CostPaid,
		"new_money":         res.NewBalance,
		"new_plant_limit":   res.NewPlantLimit,
		"next_upgrade_cost": res.NextUpgradeCost,
	})
}

// CycleWeather handles POST /users/{email}/cycle-weather.
func (h *UserHandler) CycleWeather(w http.ResponseWriter, r *http.Request) {
	email := requireSelf(w, r, "modify")
	if email == "" {
		return
	}
	previous, current, err := h.Accounts.CycleWeather(r.Context(), email)
	if err != nil {
		writeServiceError(w, h.Logger, "cycle weather", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "Weather cycled successfully",
		"previous_weather": previous,
		"new_weather":      current,
	})
}

// Delete handles DELETE /users/{email}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	email := requireSelf(w, r, "delete")
	if email == "" {
		return
	}
	if err := h.Accounts.Delete(r.Context(), email); err != nil {
		writeServiceError(w, h.Logger, "delete user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "User deleted successfully"})
}
