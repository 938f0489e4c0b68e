package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crucial707/blog-api/internal/middleware"
	"github.com/crucial707/blog-api/internal/repo"
)

// ==========================
// UserHandler
// ==========================
type UserHandler struct {
	Repo *repo.UserRepo
}

// ==========================
// Me (authenticated user's own profile)
// ==========================

// Me returns the caller's user record, looked up fresh from the store so the
// response reflects the row rather than just the token claims.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		JSONMessage(w, "Missing token", http.StatusUnauthorized)
		return
	}

	u, err := h.Repo.GetByID(r.Context(), user.ID)
	if err != nil {
		// A valid token for a row that no longer exists.
		if errors.Is(err, repo.ErrNotFound) {
			JSONMessage(w, "User not found", http.StatusNotFound)
			return
		}
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u)
}
