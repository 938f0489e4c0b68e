package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/crucial707/blog-api/internal/metrics"
	"github.com/crucial707/blog-api/internal/middleware"
	"github.com/crucial707/blog-api/internal/models"
	"github.com/crucial707/blog-api/internal/repo"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type PostHandler struct {
	Repo *repo.PostRepo
}

// calculateReadTime estimates reading time from a naive whitespace word
// count at 200 words per minute, rounded up.
func calculateReadTime(content string) string {
	words := len(strings.Fields(content))
	minutes := (words + 199) / 200
	return fmt.Sprintf("%d min read", minutes)
}

//
// ==========================
// Create Post
// ==========================
//

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title    string  `json:"title" validate:"required"`
		Content  string  `json:"content" validate:"required"`
		Author   string  `json:"author" validate:"required"`
		Tags     *string `json:"tags"`
		Category *string `json:"category"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONMessage(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	// ===== Validate input =====
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONMessage(w, "Title, content, and author are required", http.StatusBadRequest)
		return
	}

	user, ok := middleware.GetUser(r.Context())
	if !ok {
		JSONMessage(w, "Missing token", http.StatusUnauthorized)
		return
	}

	readTime := calculateReadTime(input.Content)

	if _, err := h.Repo.Create(r.Context(), input.Title, input.Content, input.Author,
		input.Tags, input.Category, readTime, user.ID); err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	metrics.IncPostsCreated()
	JSONMessage(w, "Post created successfully", http.StatusCreated)
}

//
// ==========================
// List Posts
// ==========================
//

func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	pageStr := r.URL.Query().Get("page")
	limitStr := r.URL.Query().Get("limit")

	// A supplied page/limit must be a positive integer; anything else is
	// rejected instead of turning into a negative OFFSET.
	page, ok := parsePositive(pageStr)
	if !ok {
		JSONMessage(w, "Invalid pagination parameters", http.StatusBadRequest)
		return
	}
	limit, ok := parsePositive(limitStr)
	if !ok {
		JSONMessage(w, "Invalid pagination parameters", http.StatusBadRequest)
		return
	}

	var posts []models.Post
	var err error

	if pageStr != "" && limitStr != "" {
		offset := (page - 1) * limit
		posts, err = h.Repo.ListPage(r.Context(), limit, offset)
	} else {
		// Both params are needed for a page; otherwise return everything.
		posts, err = h.Repo.List(r.Context())
	}

	if err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if posts == nil {
		posts = []models.Post{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(posts)
}

// parsePositive parses an optional query value. It reports ok for an empty
// value (param absent) or a positive integer; the parsed value is only
// meaningful in the latter case.
func parsePositive(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

//
// ==========================
// Get Post By ID
// ==========================
//

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		JSONMessage(w, "invalid post id", http.StatusBadRequest)
		return
	}

	// The increment runs before the existence check; for a missing id it
	// matches zero rows and the fetch below answers 404.
	if err := h.Repo.IncrementViews(r.Context(), id); err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	post, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONMessage(w, "Post not found", http.StatusNotFound)
			return
		}
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	metrics.IncPostViews()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(post)
}

//
// ==========================
// Update Post
// ==========================
//

func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		JSONMessage(w, "invalid post id", http.StatusBadRequest)
		return
	}

	var input struct {
		Title    *string `json:"title"`
		Content  *string `json:"content"`
		Tags     *string `json:"tags"`
		Category *string `json:"category"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONMessage(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if _, err := h.ownedPost(w, r, id); err != nil {
		return
	}

	// Every updatable field is written from the payload; omitted fields are
	// stored as NULL, and read_time keeps its creation-time value.
	if err := h.Repo.Update(r.Context(), id, input.Title, input.Content, input.Tags, input.Category); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONMessage(w, "Post not found", http.StatusNotFound)
			return
		}
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	JSONMessage(w, "Post updated successfully", http.StatusOK)
}

//
// ==========================
// Delete Post
// ==========================
//

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		JSONMessage(w, "invalid post id", http.StatusBadRequest)
		return
	}

	if _, err := h.ownedPost(w, r, id); err != nil {
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONMessage(w, "Post not found", http.StatusNotFound)
			return
		}
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	JSONMessage(w, "Post deleted successfully", http.StatusOK)
}

// ownedPost loads the post and enforces that the authenticated caller owns
// it. On failure it writes the response (404/403/500) and returns an error.
// A post with no recorded owner belongs to nobody.
func (h *PostHandler) ownedPost(w http.ResponseWriter, r *http.Request, id int) (models.Post, error) {
	post, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONMessage(w, "Post not found", http.StatusNotFound)
		} else {
			JSONError(w, err.Error(), http.StatusInternalServerError)
		}
		return post, err
	}

	user, ok := middleware.GetUser(r.Context())
	if !ok {
		JSONMessage(w, "Missing token", http.StatusUnauthorized)
		return post, errors.New("no authenticated user")
	}

	if post.UserID == nil || *post.UserID != user.ID {
		JSONMessage(w, "Not your post", http.StatusForbidden)
		return post, errors.New("not owner")
	}

	return post, nil
}
