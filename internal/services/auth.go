package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"booking-system/internal/dto"
	"booking-system/internal/entities"
	"booking-system/internal/repositories"
	"booking-system/pkg/config"
	apperrors "booking-system/pkg/errors"
	"booking-system/pkg/service"
	"booking-system/pkg/utils"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, error)
	Refresh(ctx context.Context, payload dto.RefreshDTO) (*dto.TokenPairDTO, error)
	Register(ctx context.Context, payload dto.RegisterUserDTO) (uint64, error)
	Me(ctx context.Context) (*dto.UserDTO, error)
	// IsAdmin отвечает на вопрос "этот пользователь - админ?" с коротким
	// кешем в Redis, чтобы не ходить в базу на каждый запрос.
	IsAdmin(ctx context.Context, userID uint64) (bool, error)
}

type AuthService struct {
	userRepo   repositories.UserRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	jwtService service.JWTService
	cfg        config.BookingConfig
	logger     *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	cfg config.BookingConfig,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:   userRepo,
		cacheRepo:  cacheRepo,
		jwtService: jwtService,
		cfg:        cfg,
		logger:     logger,
	}
}

func adminCacheKey(userID uint64) string {
	return fmt.Sprintf("auth:is_admin:%d", userID)
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, error) {
	user, err := s.userRepo.FindUserByLogin(ctx, payload.Login)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := utils.ComparePasswords(user.PasswordHash, payload.Password); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	access, refresh, err := s.jwtService.GenerateTokens(int(user.ID), user.IsAdmin)
	if err != nil {
		s.logger.Error("не удалось сгенерировать токены", zap.Uint64("userID", user.ID), zap.Error(err))
		return nil, err
	}

	s.cacheAdminFlag(ctx, user.ID, user.IsAdmin)
	return &dto.TokenPairDTO{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) Refresh(ctx context.Context, payload dto.RefreshDTO) (*dto.TokenPairDTO, error) {
	claims, err := s.jwtService.ValidateToken(payload.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotRefresh
	}

	// Профиль перечитывается из базы: флаг админа мог поменяться
	// с момента выдачи refresh-токена.
	user, err := s.userRepo.FindUser(ctx, uint64(claims.UserID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}

	access, refresh, err := s.jwtService.GenerateTokens(int(user.ID), user.IsAdmin)
	if err != nil {
		return nil, err
	}

	s.cacheAdminFlag(ctx, user.ID, user.IsAdmin)
	return &dto.TokenPairDTO{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) Register(ctx context.Context, payload dto.RegisterUserDTO) (uint64, error) {
	if _, err := s.userRepo.FindUserByLogin(ctx, payload.Login); err == nil {
		return 0, apperrors.NewConflictError("пользователь с таким логином уже существует")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return 0, err
	}

	hash, err := utils.HashPassword(payload.Password)
	if err != nil {
		return 0, err
	}

	return s.userRepo.CreateUser(ctx, &entities.User{
		Fio:          payload.Fio,
		Login:        payload.Login,
		Email:        payload.Email,
		PasswordHash: hash,
		IsAdmin:      payload.IsAdmin,
	})
}

func (s *AuthService) Me(ctx context.Context) (*dto.UserDTO, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindUser(ctx, uint64(userID))
	if err != nil {
		return nil, err
	}
	return &dto.UserDTO{
		ID:      user.ID,
		Fio:     user.Fio,
		Login:   user.Login,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	}, nil
}

func (s *AuthService) IsAdmin(ctx context.Context, userID uint64) (bool, error) {
	if cached, err := s.cacheRepo.Get(ctx, adminCacheKey(userID)); err == nil {
		return cached == "1", nil
	}

	user, err := s.userRepo.FindUser(ctx, userID)
	if err != nil {
		return false, err
	}
	s.cacheAdminFlag(ctx, userID, user.IsAdmin)
	return user.IsAdmin, nil
}

func (s *AuthService) cacheAdminFlag(ctx context.Context, userID uint64, isAdmin bool) {
	value := "0"
	if isAdmin {
		value = "1"
	}
	if err := s.cacheRepo.Set(ctx, adminCacheKey(userID), value, s.cfg.AdminIdentityTTL); err != nil {
		s.logger.Warn("не удалось закешировать флаг админа", zap.Uint64("userID", userID), zap.Error(err))
	}
}
