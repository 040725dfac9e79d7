package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/d-nekrasov/SalonBookingService/internal/api/handlers"
	"github.com/d-nekrasov/SalonBookingService/internal/service/appointments/models"
)

type ctxKey string

const (
	userIDKey ctxKey = "userID"
	roleKey   ctxKey = "userRole"

	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
)

// Auth проверяет наличие заголовка X-User-ID и кладет ID пользователя
// и его роль в контекст запроса. Роль берется из X-User-Role,
// при отсутствии заголовка пользователь считается клиентом
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userIDStr := r.Header.Get(headerUserID)
		if userIDStr == "" {
			handlers.RespondUnauthorized(w, "отсутствует заголовок X-User-ID")
			return
		}

		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, "некорректный заголовок X-User-ID")
			return
		}

		role := r.Header.Get(headerUserRole)
		if role != models.RoleStaff {
			role = models.RoleCustomer
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, roleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID возвращает ID пользователя из контекста запроса
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

// GetRole возвращает роль пользователя из контекста запроса
func GetRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleKey).(string)
	return role, ok
}

// GetActor собирает субъекта запроса из контекста
func GetActor(ctx context.Context) (models.Actor, bool) {
	userID, ok := GetUserID(ctx)
	if !ok {
		return models.Actor{}, false
	}

	role, ok := GetRole(ctx)
	if !ok {
		role = models.RoleCustomer
	}

	return models.Actor{UserID: userID, Role: role}, true
}
