package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/crucial707/blog-api/internal/metrics"
	"github.com/crucial707/blog-api/internal/middleware"
	"github.com/crucial707/blog-api/internal/repo"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the fixed work factor for password hashing.
const bcryptCost = 10

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	UserRepo *repo.UserRepo
	Secret   []byte
	TokenTTL time.Duration
}

// ==========================
// Register (uniqueness check + bcrypt hash + insert)
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONMessage(w, "invalid json", http.StatusBadRequest)
		return
	}

	if input.Username == "" || input.Email == "" || input.Password == "" {
		JSONMessage(w, "Username, email, and password are required", http.StatusBadRequest)
		return
	}

	exists, err := h.UserRepo.Exists(r.Context(), input.Username, input.Email)
	if err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if exists {
		JSONMessage(w, "User already exists", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if _, err := h.UserRepo.Create(r.Context(), input.Username, input.Email, string(hash)); err != nil {
		// A racing insert can slip past the Exists check; the unique index
		// turns it into the same conflict answer.
		if e, ok := err.(*pq.Error); ok && e.Code == "23505" {
			JSONMessage(w, "User already exists", http.StatusBadRequest)
			return
		}
		slog.Error("register: create user failed", "username", input.Username, "err", err)
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	JSONMessage(w, "User registered successfully", http.StatusCreated)
}

// ==========================
// Login (lookup + constant-time hash compare + token issuance)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONMessage(w, "invalid json", http.StatusBadRequest)
		return
	}

	// Unknown user and wrong password produce the identical response, so the
	// endpoint cannot be used to enumerate usernames. A store failure is not
	// a credential failure and surfaces as 500.
	user, err := h.UserRepo.GetByUsername(r.Context(), input.Username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			metrics.IncLogins("failed")
			JSONMessage(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		metrics.IncLogins("failed")
		JSONMessage(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	now := time.Now()
	claims := &middleware.Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(h.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.Secret)
	if err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	metrics.IncLogins("ok")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Login successful",
		"token":   signed,
	})
}
