package auth

import (
	"context"
	"crypto/subtle"
	"time"

	autherrors "go-research/internal/auth/errors"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
}

// The catalog is a single-admin tool: credentials come from the
// environment, not a user table.
type service struct {
	username     string
	passwordHash []byte
	jwtSecret    []byte
	logger       *zap.Logger
}

func NewService(username string, passwordHash, jwtSecret []byte, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{
		username:     username,
		passwordHash: passwordHash,
		jwtSecret:    jwtSecret,
		logger:       l,
	}
}

func (s *service) Login(_ context.Context, req LoginRequest) (LoginResponse, error) {
	usernameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.username)) == 1
	passwordErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password))

	if !usernameOK || passwordErr != nil {
		s.logger.Warn("login rejected", zap.String("username", req.Username))
		return LoginResponse{}, autherrors.ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": s.username,
		"iat":     time.Now().Unix(),
		"exp":     expiresAt.Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		s.logger.Error("sign token failed", zap.Error(err))
		return LoginResponse{}, err
	}

	s.logger.Info("login success", zap.String("username", req.Username))
	return LoginResponse{
		Token:     signed,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	}, nil
}
