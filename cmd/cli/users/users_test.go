package users

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crucial707/blog-api/cmd/cli/config"
)

func TestLogin_SavesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message": "Login successful",
			"token":   "header.payload.signature",
		})
	}))
	defer srv.Close()

	t.Setenv("BLOG_API_URL", srv.URL)
	t.Setenv("HOME", t.TempDir())

	cmd := loginCmd()
	_ = cmd.Flags().Set("username", "alice")
	_ = cmd.Flags().Set("password", "secret")

	if err := cmd.RunE(cmd, []string{}); err != nil {
		t.Fatalf("login: %v", err)
	}

	token, err := config.ReadToken()
	if err != nil {
		t.Fatalf("read token: %v", err)
	}
	if token != "header.payload.signature" {
		t.Errorf("unexpected token: %q", token)
	}
}

func TestLogin_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	}))
	defer srv.Close()

	t.Setenv("BLOG_API_URL", srv.URL)
	t.Setenv("HOME", t.TempDir())

	cmd := loginCmd()
	_ = cmd.Flags().Set("username", "alice")
	_ = cmd.Flags().Set("password", "wrong")

	if err := cmd.RunE(cmd, []string{}); err == nil {
		t.Fatal("expected an error for rejected credentials")
	}
}
