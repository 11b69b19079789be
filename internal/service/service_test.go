package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/jwt_auth/internal/events"
	"github.com/Skotchmaster/jwt_auth/internal/hash"
	"github.com/Skotchmaster/jwt_auth/internal/models"
	"github.com/Skotchmaster/jwt_auth/internal/repo"
	"github.com/Skotchmaster/jwt_auth/internal/testdb"
	"github.com/Skotchmaster/jwt_auth/pkg/tokens"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev, ok := event.(events.Event); ok {
		p.events = append(p.events, ev)
	}
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	repo   *repo.GormRepo
	tokens *TokenService
	users  *UserService
	roles  *RoleService
	codec  *tokens.Codec
	pub    *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	r := repo.New(testdb.Open(t))
	pub := &recordingPublisher{}
	em := events.NewEmitter(pub, "auth_events")
	codec := tokens.NewCodec([]byte("test-secret"), tokens.DefaultIssuer, 5*time.Hour)

	for _, name := range []string{models.RoleSuperAdmin, models.RoleAdmin, models.RoleUser} {
		require.NoError(t, r.CreateRole(context.Background(), &models.Role{Name: name}))
	}

	return &fixture{
		repo: r,
		tokens: &TokenService{
			Users:  r,
			Store:  NewRefreshStore(r, 6),
			Codec:  codec,
			Events: em,
			Now:    func() time.Time { return testNow },
		},
		users: &UserService{Users: r, Roles: r, Events: em},
		roles: &RoleService{Users: r, Roles: r, Events: em},
		codec: codec,
		pub:   pub,
	}
}

// addUser inserts a user directly with the given roles and password.
func (f *fixture) addUser(t *testing.T, username, password string, roles ...string) *models.User {
	t.Helper()
	ctx := context.Background()

	pw, err := hash.HashPassword(password)
	require.NoError(t, err)

	u := &models.User{UserName: username, FullName: username, Email: username + "@example.com", PasswordHash: pw}
	for _, name := range roles {
		role, err := f.repo.FindRoleByName(ctx, name)
		require.NoError(t, err)
		u.Roles = append(u.Roles, *role)
	}
	require.NoError(t, f.repo.CreateUser(ctx, u))
	return u
}
