package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andrewpaige1/formcraft-api/auth"
	"github.com/andrewpaige1/formcraft-api/config"
	"github.com/andrewpaige1/formcraft-api/logger"
	"github.com/andrewpaige1/formcraft-api/models"
	"github.com/andrewpaige1/formcraft-api/utils"
)

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body.Message
}

func TestProtectedChain(t *testing.T) {
	log := logger.NewNop()
	db, err := config.Connect(":memory:", log)
	if err != nil {
		t.Fatal(err)
	}
	guard, err := auth.NewGuard(auth.Options{Secret: "s", Issuer: "i", Audience: "a", TTL: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	user := models.User{ID: "user-1", Email: "a@b.com", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}

	var seen *models.User
	handler := EnsureValidToken(guard, log)(SyncUserMiddleware(db, log, func(w http.ResponseWriter, r *http.Request) {
		seen, _ = CurrentUser(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	valid, _ := guard.CreateToken("user-1", "a@b.com")
	ghost, _ := guard.CreateToken("deleted-user", "")

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing", "", http.StatusUnauthorized, "Access token required"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, "Invalid or expired token"},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, "Invalid or expired token"},
		{"unknown user", "Bearer " + ghost, http.StatusUnauthorized, "User not authenticated"},
		{"valid", "Bearer " + valid, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/form", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.message != "" {
				if got := decodeMessage(t, rec); got != tt.message {
					t.Errorf("message = %q, want %q", got, tt.message)
				}
				return
			}
			if seen == nil || seen.ID != "user-1" {
				t.Errorf("user in context = %+v", seen)
			}
		})
	}
}

func TestRecover(t *testing.T) {
	h := Recover(logger.NewNop(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeMessage(t, rec); got != "Something went wrong!" {
		t.Errorf("message = %q", got)
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	h := RequestLogger(logger.NewNop(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("missing request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc" {
		t.Errorf("request id = %q, want passthrough", got)
	}
}

func TestEnsureValidTokenStoresAuthenticatedUserID(t *testing.T) {
	guard, err := auth.NewGuard(auth.Options{Secret: "s", Issuer: "i", Audience: "a", TTL: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	token, _ := guard.CreateToken("user-42", "a@b.com")

	var got string
	handler := EnsureValidToken(guard, logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = utils.GetUserID(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/form", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	want, err := guard.Authenticate(req.Context(), token)
	if err != nil {
		t.Fatal(err)
	}
	if got != want || got != "user-42" {
		t.Errorf("user id = %q, want %q", got, want)
	}
}
