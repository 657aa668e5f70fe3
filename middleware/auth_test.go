package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/league-standings/models"
)

var testSecret = []byte("test-secret")

func signedToken(t *testing.T, claims jwt.MapClaims, secret []byte) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func actorEcho(t *testing.T, got *models.Actor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := ActorFromContext(r.Context())
		if err != nil {
			t.Errorf("ActorFromContext: %v", err)
		}
		*got = actor
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	valid := signedToken(t, jwt.MapClaims{"user_id": 12, "role": "admin", "exp": time.Now().Add(time.Hour).Unix()}, testSecret)
	expired := signedToken(t, jwt.MapClaims{"user_id": 12, "exp": time.Now().Add(-time.Hour).Unix()}, testSecret)
	foreign := signedToken(t, jwt.MapClaims{"user_id": 12}, []byte("other"))

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"bearer header", "Bearer " + valid, "", http.StatusNoContent},
		{"query token", "", "?token=" + valid, http.StatusNoContent},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", "", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, "", http.StatusUnauthorized},
		{"wrong key", "Bearer " + foreign, "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var actor models.Actor
			req := httptest.NewRequest(http.MethodGet, "/api/matches/1"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			Authenticate(testSecret)(actorEcho(t, &actor)).ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status == http.StatusNoContent && (actor.PlayerID != 12 || !actor.IsAdmin()) {
				t.Fatalf("actor = %+v", actor)
			}
		})
	}
}

func TestActorFromContextDefaultsToPlayer(t *testing.T) {
	ctx := WithClaims(httptest.NewRequest(http.MethodGet, "/", nil).Context(), jwt.MapClaims{"user_id": "7"})
	actor, err := ActorFromContext(ctx)
	if err != nil {
		t.Fatalf("ActorFromContext: %v", err)
	}
	if actor.PlayerID != 7 || actor.Role != models.RolePlayer {
		t.Fatalf("actor = %+v", actor)
	}

	bad := WithClaims(ctx, jwt.MapClaims{"user_id": 7.5})
	if _, err := ActorFromContext(bad); err == nil {
		t.Fatal("expected an error for a fractional user id")
	}
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	for role, want := range map[string]int{"admin": http.StatusOK, "player": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(WithClaims(req.Context(), jwt.MapClaims{"user_id": 1.0, "role": role}))
		rec := httptest.NewRecorder()
		RequireRole("admin")(next).ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("role %s: status = %d, want %d", role, rec.Code, want)
		}
	}
}
