package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/blog-api/internal/config"
	"golang.org/x/crypto/bcrypt"
)

var postCols = []string{"id", "title", "content", "author", "tags", "category", "read_time", "views", "user_id", "created_at"}

// TestAPI_RegisterLoginCreatePost is an integration test: it builds the full
// router with a sqlmock-backed DB, registers and logs in a user, then creates
// a post with the returned JWT.
func TestAPI_RegisterLoginCreatePost(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	// Register: uniqueness check + insert
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("bob", "bob@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("bob", "bob@x.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "created_at"}).
			AddRow(1, "bob", "bob@x.com", time.Now()))

	// Login: lookup by username
	mock.ExpectQuery(`SELECT id, username, email, password_hash`).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at"}).
			AddRow(1, "bob", "bob@x.com", string(hash), time.Now()))

	// Create post: four words of content is a one-minute read
	mock.ExpectQuery(`INSERT INTO posts`).
		WithArgs("T", "a few short words", "bob", nil, nil, "1 min read", 1).
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow(1, "T", "a few short words", "bob", "", "", "1 min read", 0, 1, time.Now()))

	cfg := config.Config{
		JWTSecret:      "test-secret-for-integration",
		JWTExpireHours: 1,
	}
	r := newRouter(db, cfg)
	srv := httptest.NewServer(r)
	defer srv.Close()

	// 1) Register
	registerBody, _ := json.Marshal(map[string]string{
		"username": "bob", "email": "bob@x.com", "password": "secret",
	})
	registerResp, err := http.Post(srv.URL+"/auth/register", "application/json", bytes.NewReader(registerBody))
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	defer registerResp.Body.Close()
	if registerResp.StatusCode != http.StatusCreated {
		t.Fatalf("register status: got %d, want 201", registerResp.StatusCode)
	}

	// 2) Login
	loginBody, _ := json.Marshal(map[string]string{"username": "bob", "password": "secret"})
	loginResp, err := http.Post(srv.URL+"/auth/login", "application/json", bytes.NewReader(loginBody))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer loginResp.Body.Close()
	if loginResp.StatusCode != http.StatusOK {
		t.Fatalf("login status: got %d, want 200", loginResp.StatusCode)
	}
	var loginOut struct {
		Message string `json:"message"`
		Token   string `json:"token"`
	}
	if err := json.NewDecoder(loginResp.Body).Decode(&loginOut); err != nil || loginOut.Token == "" {
		t.Fatalf("login response: %v (token=%q)", err, loginOut.Token)
	}

	// 3) Create post with Bearer token
	postBody, _ := json.Marshal(map[string]string{
		"title": "T", "content": "a few short words", "author": "bob",
	})
	req, _ := http.NewRequest("POST", srv.URL+"/posts", bytes.NewReader(postBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+loginOut.Token)
	createResp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("create post request: %v", err)
	}
	defer createResp.Body.Close()
	if createResp.StatusCode != http.StatusCreated {
		t.Fatalf("create post status: got %d, want 201", createResp.StatusCode)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// TestAPI_CreatePostWithoutToken checks that an unauthenticated create is
// rejected before any store access.
func TestAPI_CreatePostWithoutToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	cfg := config.Config{JWTSecret: "x", JWTExpireHours: 1}
	r := newRouter(db, cfg)
	srv := httptest.NewServer(r)
	defer srv.Close()

	body, _ := json.Marshal(map[string]string{"title": "T", "content": "C", "author": "a"})
	resp, err := http.Post(srv.URL+"/posts", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", resp.StatusCode)
	}
	// No expectations were registered: any store call would fail the test.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// TestAPI_Health is a quick smoke test for the health endpoint.
func TestAPI_Health(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	cfg := config.Config{JWTSecret: "x", JWTExpireHours: 1}
	r := newRouter(db, cfg)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status: got %d, want 200", resp.StatusCode)
	}
}

// TestAPI_Ready checks that /ready pings the DB and returns 200 when DB is reachable.
func TestAPI_Ready(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	cfg := config.Config{JWTSecret: "x", JWTExpireHours: 1}
	r := newRouter(db, cfg)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ready")
	if err != nil {
		t.Fatalf("ready request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /ready status: got %d, want 200", resp.StatusCode)
	}
}
