package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/jwt_auth/internal/models"
)

func TestMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/login", "/login", true},
		{"/login", "/login/", true},
		{"/login", "/logins", false},
		{"/auth/**", "/auth", true},
		{"/auth/**", "/auth/refresh", true},
		{"/auth/**", "/auth/a/b/c", true},
		{"/auth/**", "/authx/refresh", false},
		{"/users/*", "/users/bob", true},
		{"/users/*", "/users", false},
		{"/users/*", "/users/bob/roles", false},
		{"/**", "/", true},
		{"/**", "/anything/at/all", true},
		{"/**/roles", "/a/b/roles", true},
		{"/files/*.png", "/files/a.png", true},
		{"/files/*.png", "/files/a.jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.pattern, tt.path))
		})
	}
}

func TestDefaultTable_Decide(t *testing.T) {
	t.Parallel()

	table := DefaultTable("/login")
	admin := &Principal{Username: "admin", Authorities: []string{models.RoleAdmin, models.RoleUser}}
	user := &Principal{Username: "alice", Authorities: []string{models.RoleUser}}
	noRoles := &Principal{Username: "bare"}

	tests := []struct {
		name   string
		method string
		path   string
		p      *Principal
		want   Decision
	}{
		{"login anonymous", "POST", "/login", nil, Allow},
		{"refresh anonymous", "POST", "/auth/refresh", nil, Allow},
		{"signout anonymous", "POST", "/auth/signout", nil, Allow},
		{"health anonymous", "GET", "/health/live", nil, Allow},
		{"signup via users", "POST", "/users", nil, Allow},
		{"list users anonymous", "GET", "/users", nil, Unauthorized},
		{"list users as user", "GET", "/users", user, Forbidden},
		{"list users as admin", "GET", "/users", admin, Allow},
		{"roles as user", "GET", "/roles", user, Forbidden},
		{"roles post as user", "POST", "/roles/addtouser", user, Forbidden},
		{"roles as admin", "POST", "/roles/addtouser", admin, Allow},
		{"roles anonymous", "GET", "/roles", nil, Unauthorized},
		{"get user anonymous", "GET", "/users/bob", nil, Unauthorized},
		{"get user as user", "GET", "/users/bob", user, Allow},
		{"put users no roles", "PUT", "/users", noRoles, Allow},
		{"delete user", "DELETE", "/users/bob", user, Allow},
		{"get login falls to catch-all", "GET", "/login", nil, Unauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Decide(tt.method, tt.path, tt.p))
		})
	}
}

func TestTable_FirstMatchWinsAndDefaultDeny(t *testing.T) {
	t.Parallel()

	table := Table{
		{Method: "GET", Pattern: "/open/**", Access: Public},
		{Pattern: "/open/secret", Access: Authority("ROLE_X")},
	}
	assert.Equal(t, Allow, table.Decide("GET", "/open/secret", nil))
	assert.Equal(t, Unauthorized, table.Decide("POST", "/open/secret", nil))
	assert.Equal(t, Forbidden, table.Decide("GET", "/elsewhere", nil))
	assert.Equal(t, Forbidden, table.Decide("GET", "/elsewhere", &Principal{Username: "x"}))
}

func TestDefaultTable_CustomLoginPath(t *testing.T) {
	t.Parallel()

	table := DefaultTable("/api/login")
	assert.Equal(t, Allow, table.Decide("POST", "/api/login", nil))
	assert.Equal(t, Unauthorized, table.Decide("POST", "/login", nil))
}

func TestIsOwnerOrAdmin(t *testing.T) {
	t.Parallel()

	adminRole := models.Role{ID: 2, Name: models.RoleAdmin}
	userRole := models.Role{ID: 3, Name: models.RoleUser}

	tests := []struct {
		name   string
		admin  bool
		sameID bool
		want   bool
	}{
		{"admin on own record", true, true, true},
		{"admin on other record", true, false, true},
		{"owner without admin", false, true, true},
		{"stranger without admin", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := &models.User{ID: 1, Roles: []models.Role{userRole}}
			if tt.admin {
				actor.Roles = append(actor.Roles, adminRole)
			}
			target := &models.User{ID: 2}
			if tt.sameID {
				target.ID = actor.ID
			}
			assert.Equal(t, tt.want, IsOwnerOrAdmin(actor, target))
		})
	}

	assert.False(t, IsOwnerOrAdmin(nil, &models.User{ID: 1}))
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "unauthorized", Unauthorized.String())
	assert.Equal(t, "forbidden", Forbidden.String())
}
