package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/jwt_auth/internal/events"
	"github.com/Skotchmaster/jwt_auth/internal/models"
	"github.com/Skotchmaster/jwt_auth/pkg/logging"
	"github.com/Skotchmaster/jwt_auth/pkg/tokens"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenService issues access/refresh pairs. Users are always read from
// the directory at issuance time so role changes show up on the next
// login or refresh.
type TokenService struct {
	Users    UserRepository
	Store    *RefreshStore
	Codec    *tokens.Codec
	Events   *events.Emitter
	Now      func() time.Time
	Location *time.Location
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TokenService) IssueFor(ctx context.Context, username string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.issue", "username", username)

	user, err := s.Users.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		l.Error("issue_error", "status", 500, "reason", "user lookup failed", "error", err)
		return nil, fmt.Errorf("find user: %w", err)
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		l.Error("issue_error", "status", 500, "error", err)
		return nil, err
	}

	s.Events.Emit(ctx, events.Event{Type: events.TypeUserLoggedIn, UserID: user.ID, Username: user.UserName})
	return pair, nil
}

// Refresh rotates: the old token is deleted and committed before the new
// pair is created, so a failure in between leaves the user logged out.
func (s *TokenService) Refresh(ctx context.Context, oldToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	owner, err := s.Store.Consume(ctx, oldToken)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			l.Warn("refresh_rejected", "status", 400, "reason", "unknown or already used refresh token")
		} else {
			l.Error("refresh_error", "status", 500, "error", err)
		}
		return nil, err
	}

	pair, err := s.issue(ctx, owner)
	if err != nil {
		l.Error("refresh_error", "status", 500, "username", owner.UserName, "error", err)
		return nil, err
	}

	s.Events.Emit(ctx, events.Event{Type: events.TypeTokensRefreshed, UserID: owner.ID, Username: owner.UserName})
	return pair, nil
}

func (s *TokenService) Logout(ctx context.Context, token string) error {
	if err := s.Store.Revoke(ctx, token); err != nil {
		if !errors.Is(err, ErrInvalidRefreshToken) {
			logging.FromContext(ctx).Error("logout_error", "svc", "auth.logout", "status", 500, "error", err)
		}
		return err
	}
	s.Events.Emit(ctx, events.Event{Type: events.TypeUserLoggedOut})
	return nil
}

// CleanExpired removes refresh tokens whose expiry date is before today
// in the configured location.
func (s *TokenService) CleanExpired(ctx context.Context) (int64, error) {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	n, err := s.Store.PurgeExpired(ctx, s.now().In(loc))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.Events.Emit(ctx, events.Event{Type: events.TypeRefreshTokensPurged, Count: n})
	}
	return n, nil
}

func (s *TokenService) issue(ctx context.Context, user *models.User) (*TokenPair, error) {
	now := s.now()

	access, err := s.Codec.Issue(user.UserName, user.RoleNames(), now)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	rt, err := s.Store.CreateFor(ctx, user, now)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: rt.Token}, nil
}
