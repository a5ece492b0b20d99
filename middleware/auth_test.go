package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/tournament-progression/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func protected(t *testing.T) http.Handler {
	t.Helper()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserIDFromContext(r.Context())
		require.NoError(t, err)
		assert.Equal(t, 17, id)
		w.WriteHeader(http.StatusNoContent)
	})
	return Authenticate(testSecret)(Authorize(models.ResultManagers...)(ok))
}

func request(t *testing.T, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/matches/t1-R1M1/result", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuthenticateAndAuthorize(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()
	organizer, err := IssueToken(testSecret, 17, models.RoleOrganizer, future)
	require.NoError(t, err)
	instructor, err := IssueToken(testSecret, 17, models.RoleInstructor, future)
	require.NoError(t, err)
	player, err := IssueToken(testSecret, 17, models.RolePlayer, future)
	require.NoError(t, err)
	expired, err := IssueToken(testSecret, 17, models.RoleOrganizer, time.Now().Add(-time.Minute).Unix())
	require.NoError(t, err)
	foreign, err := IssueToken([]byte("other-secret"), 17, models.RoleOrganizer, future)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 17, "role": "admin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"organizer", organizer, http.StatusNoContent},
		{"instructor", instructor, http.StatusNoContent},
		{"player is forbidden", player, http.StatusForbidden},
		{"missing token", "", http.StatusUnauthorized},
		{"expired", expired, http.StatusUnauthorized},
		{"wrong secret", foreign, http.StatusUnauthorized},
		{"unsigned", none, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			protected(t).ServeHTTP(rec, request(t, tt.token))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
