package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/jwt_auth/internal/models"
)

const (
	DefaultRefreshTTLMonths = 6
	maxCandidateAttempts    = 8
)

var errCandidatesExhausted = errors.New("could not generate a unique refresh token")

// RefreshStore owns the opaque refresh tokens: creation with
// uniqueness-by-retry, single-use consumption and the expiry sweep.
type RefreshStore struct {
	Repo      RefreshRepository
	TTLMonths int
	Generate  func() string
}

func NewRefreshStore(repo RefreshRepository, ttlMonths int) *RefreshStore {
	if ttlMonths <= 0 {
		ttlMonths = DefaultRefreshTTLMonths
	}
	return &RefreshStore{Repo: repo, TTLMonths: ttlMonths, Generate: GenerateCandidate}
}

// GenerateCandidate returns 32 lowercase hex chars from a random UUID.
func GenerateCandidate() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ExpiryDate adds whole months to the calendar date of now. A day past
// the end of the target month is clamped to its last day.
func ExpiryDate(now time.Time, months int) time.Time {
	y, m, d := now.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

func (s *RefreshStore) CreateFor(ctx context.Context, user *models.User, now time.Time) (*models.RefreshToken, error) {
	gen := s.Generate
	if gen == nil {
		gen = GenerateCandidate
	}
	expiry := ExpiryDate(now, s.TTLMonths)

	for attempt := 0; attempt < maxCandidateAttempts; attempt++ {
		candidate := gen()

		exists, err := s.Repo.RefreshTokenExists(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("check refresh token: %w", err)
		}
		if exists {
			continue
		}

		rt := &models.RefreshToken{UserID: user.ID, Token: candidate, ExpiryDate: expiry}
		if err := s.Repo.CreateRefreshToken(ctx, rt); err != nil {
			// lost a race with a concurrent insert of the same value
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return nil, fmt.Errorf("save refresh token: %w", err)
		}
		return rt, nil
	}
	return nil, errCandidatesExhausted
}

// Consume deletes the token and returns its owner. Unknown or already
// consumed tokens yield ErrInvalidRefreshToken.
func (s *RefreshStore) Consume(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidRefreshToken
	}
	owner, err := s.Repo.ConsumeRefreshToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}
	return owner, nil
}

func (s *RefreshStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidRefreshToken
	}
	if err := s.Repo.DeleteRefreshToken(ctx, token); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidRefreshToken
		}
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (s *RefreshStore) PurgeExpired(ctx context.Context, today time.Time) (int64, error) {
	y, m, d := today.Date()
	n, err := s.Repo.DeleteRefreshTokensExpiredBefore(ctx, time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return 0, fmt.Errorf("purge refresh tokens: %w", err)
	}
	return n, nil
}
