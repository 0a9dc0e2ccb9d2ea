package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"booking-system/pkg/service"
)

type staticAdminChecker struct {
	isAdmin bool
	err     error
}

func (s staticAdminChecker) IsAdmin(ctx context.Context, userID uint64) (bool, error) {
	return s.isAdmin, s.err
}

func callAdminEndpoint(t *testing.T, checker AdminChecker, token string) *httptest.ResponseRecorder {
	t.Helper()

	jwtSvc := service.NewJWTService("test-secret", time.Hour, time.Hour)
	mw := NewAuthMiddleware(jwtSvc, checker, zap.NewNop())

	handler := mw.Auth(mw.AdminOnly(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	_ = handler(e.NewContext(req, rec))
	return rec
}

func adminToken(t *testing.T) string {
	t.Helper()
	jwtSvc := service.NewJWTService("test-secret", time.Hour, time.Hour)
	access, _, err := jwtSvc.GenerateTokens(7, true)
	require.NoError(t, err)
	return access
}

func TestAdminOnly_ConsultsChecker(t *testing.T) {
	token := adminToken(t)

	t.Run("действующий админ проходит", func(t *testing.T) {
		rec := callAdminEndpoint(t, staticAdminChecker{isAdmin: true}, token)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	// Права сняли после выдачи токена: флаг в claims ещё true,
	// но проверка по живым данным закрывает дверь.
	t.Run("разжалованный админ получает отказ", func(t *testing.T) {
		rec := callAdminEndpoint(t, staticAdminChecker{isAdmin: false}, token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	// Redis и БД недоступны - откат на флаг из токена, сервис живёт.
	t.Run("при ошибке проверки используется флаг из токена", func(t *testing.T) {
		rec := callAdminEndpoint(t, staticAdminChecker{err: fmt.Errorf("кеш недоступен")}, token)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
