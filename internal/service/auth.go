package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/shop-ledger/internal/auth"
	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/lockout"
	"github.com/josh-kwaku/shop-ledger/internal/logging"
)

type AuthService struct {
	users     userRepository
	guard     *lockout.Guard
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthService(users userRepository, guard *lockout.Guard, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		guard:     guard,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

type UnlockResult struct {
	Token   string
	User    *domain.User
	Lockout lockout.Result
}

// Unlock checks the password of username behind the lockout guard. The
// lockout is keyed by the username being unlocked, whoever asks. Unknown and
// suspended users fail exactly like a wrong password.
func (s *AuthService) Unlock(ctx context.Context, username, password string) (*UnlockResult, error) {
	log := logging.FromContext(ctx)

	var user *domain.User
	res, err := s.guard.Attempt(ctx, username, func(ctx context.Context) error {
		u, err := s.users.GetByUsername(ctx, username)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidCredentials
		}
		if err != nil {
			return err
		}
		if u.Status != domain.UserStatusActive {
			return domain.ErrInvalidCredentials
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
			return domain.ErrInvalidCredentials
		}
		user = u
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrLocked) || errors.Is(err, domain.ErrInvalidCredentials) {
			log.Info("unlock refused", "username", username, "locked", res.Locked, "attempts_remaining", res.AttemptsRemaining)
		}
		return &UnlockResult{Lockout: res}, fmt.Errorf("Unlock: %w", err)
	}

	token, err := auth.GenerateToken(auth.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Scope:    user.Scope,
	}, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return nil, fmt.Errorf("Unlock: %w", err)
	}

	log.Info("unlocked", "username", username, "role", user.Role)
	return &UnlockResult{Token: token, User: user, Lockout: res}, nil
}
