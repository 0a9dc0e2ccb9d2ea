package middleware

import (
	"context"
	"strings"

	"booking-system/pkg/contextkeys"
	apperrors "booking-system/pkg/errors"
	"booking-system/pkg/service"
	"booking-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AdminChecker отвечает на вопрос "этот пользователь сейчас админ?"
// по живым данным (кеш + БД), а не по снимку в токене.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uint64) (bool, error)
}

type AuthMiddleware struct {
	jwtService   service.JWTService
	adminChecker AdminChecker
	logger       *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, adminChecker AdminChecker, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:   jwtSvc,
		adminChecker: adminChecker,
		logger:       logger,
	}
}

// Auth извлекает Bearer-токен, валидирует его и кладёт идентичность
// (UserID, признак администратора) в контекст запроса.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Warn("AuthMiddleware: Пустой заголовок Authorization")
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("AuthMiddleware: Неверный формат заголовка Authorization")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("AuthMiddleware: Ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		if claims.IsRefreshToken {
			m.logger.Warn("AuthMiddleware: Попытка доступа с refresh токеном")
			return utils.ErrorResponse(c, apperrors.ErrTokenIsNotAccess, m.logger)
		}

		ctx := c.Request().Context()
		ctx = context.WithValue(ctx, contextkeys.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, contextkeys.IsAdminKey, claims.IsAdmin)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// AdminOnly пропускает дальше только администраторов. Вешается после Auth.
// Флаг сверяется через AdminChecker: снятие прав срабатывает в пределах TTL
// кеша, а не до конца жизни access-токена.
func (m *AuthMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := utils.GetUserIDFromCtx(ctx)
		if err != nil {
			return utils.ErrorResponse(c, err, m.logger)
		}

		isAdmin, err := m.adminChecker.IsAdmin(ctx, uint64(userID))
		if err != nil {
			m.logger.Warn("AuthMiddleware: Не удалось сверить права администратора, используется флаг из токена",
				zap.Int("userID", userID), zap.Error(err))
			isAdmin = utils.GetIsAdminFromCtx(ctx)
		}

		if !isAdmin {
			m.logger.Warn("AuthMiddleware: Попытка админского действия без прав", zap.Int("userID", userID))
			return utils.ErrorResponse(c, apperrors.ErrForbidden, m.logger)
		}
		return next(c)
	}
}
