package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/jwt_auth/internal/events"
	"github.com/Skotchmaster/jwt_auth/internal/models"
)

func TestTokenService_IssueFor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice", "alice@1234", models.RoleUser)

	pair, err := f.tokens.IssueFor(ctx, "alice")
	require.NoError(t, err)

	claims, err := f.codec.Verify(pair.AccessToken, testNow)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, []string{models.RoleUser}, claims.Roles)

	require.Len(t, pair.RefreshToken, 32)
	stored, err := f.repo.FindRefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, stored.UserID)
	assert.Equal(t, "2027-04-15", stored.ExpiryDate.Format("2006-01-02"))

	assert.Equal(t, []string{events.TypeUserLoggedIn}, f.pub.types())
}

func TestTokenService_IssueFor_UnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.tokens.IssueFor(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, f.pub.types())
}

func TestTokenService_ConcurrentIssuanceIsUnique(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", "alice@1234", models.RoleUser)

	const n = 25
	var wg sync.WaitGroup
	results := make(chan string, n)
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pair, err := f.tokens.IssueFor(context.Background(), "alice")
			if err != nil {
				errs <- err
				return
			}
			results <- pair.RefreshToken
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	seen := make(map[string]struct{}, n)
	for tok := range results {
		_, dup := seen[tok]
		require.False(t, dup, "duplicate refresh token %s", tok)
		seen[tok] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestTokenService_RefreshRotates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "alice", "alice@1234", models.RoleUser)

	first, err := f.tokens.IssueFor(ctx, "alice")
	require.NoError(t, err)

	second, err := f.tokens.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = f.tokens.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	ok, err := f.repo.RefreshTokenExists(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.tokens.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, []string{events.TypeUserLoggedIn, events.TypeTokensRefreshed, events.TypeTokensRefreshed}, f.pub.types())
}

func TestTokenService_ConcurrentRefreshHasOneWinner(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", "alice@1234", models.RoleUser)
	pair, err := f.tokens.IssueFor(context.Background(), "alice")
	require.NoError(t, err)

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.tokens.Refresh(context.Background(), pair.RefreshToken); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestTokenService_RefreshSeesNewRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "alice", "alice@1234", models.RoleUser)

	pair, err := f.tokens.IssueFor(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, f.roles.AddToUser(ctx, "alice", models.RoleAdmin))

	next, err := f.tokens.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	claims, err := f.codec.Verify(next.AccessToken, testNow)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{models.RoleUser, models.RoleAdmin}, claims.Roles)
}

func TestTokenService_Logout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "alice", "alice@1234", models.RoleUser)

	pair, err := f.tokens.IssueFor(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, f.tokens.Logout(ctx, pair.RefreshToken))
	require.ErrorIs(t, f.tokens.Logout(ctx, pair.RefreshToken), ErrInvalidRefreshToken)

	_, err = f.tokens.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestTokenService_CleanExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice", "alice@1234", models.RoleUser)

	today := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	for i, offset := range []int{-2, -1, 0, 1} {
		require.NoError(t, f.repo.CreateRefreshToken(ctx, &models.RefreshToken{
			UserID:     alice.ID,
			Token:      string(rune('a'+i)) + "0000000000000000000000000000000",
			ExpiryDate: today.AddDate(0, 0, offset),
		}))
	}

	n, err := f.tokens.CleanExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = f.tokens.CleanExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Equal(t, []string{events.TypeRefreshTokensPurged}, f.pub.types())
}

func TestTokenService_CleanExpired_UsesLocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice", "alice@1234")

	require.NoError(t, f.repo.CreateRefreshToken(ctx, &models.RefreshToken{
		UserID: alice.ID, Token: "z0000000000000000000000000000000", ExpiryDate: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
	}))

	// 22:00 UTC on the 15th is already the 16th at UTC+3.
	f.tokens.Now = func() time.Time { return time.Date(2026, 10, 15, 22, 0, 0, 0, time.UTC) }
	f.tokens.Location = time.FixedZone("UTC+3", 3*3600)

	n, err := f.tokens.CleanExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
