package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d-nekrasov/SalonBookingService/internal/service/appointments/models"
)

func TestAuth_MissingHeader(t *testing.T) {
	handler := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be called without X-User-ID")
	}))

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_InvalidHeader(t *testing.T) {
	handler := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be called with a malformed X-User-ID")
	}))

	for _, v := range []string{"abc", "0", "-5"} {
		req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
		req.Header.Set("X-User-ID", v)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", v)
	}
}

func TestAuth_PutsActorIntoContext(t *testing.T) {
	var actor models.Actor
	handler := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		actor, ok = GetActor(r.Context())
		require.True(t, ok)
	}))

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("X-User-ID", "7")
	req.Header.Set("X-User-Role", "staff")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), actor.UserID)
	assert.True(t, actor.IsStaff())
}

func TestAuth_UnknownRoleDefaultsToCustomer(t *testing.T) {
	var actor models.Actor
	handler := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, _ = GetActor(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("X-User-ID", "7")
	req.Header.Set("X-User-Role", "superadmin")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, models.RoleCustomer, actor.Role)
	assert.False(t, actor.IsStaff())
}
