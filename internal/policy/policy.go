// Package policy decides who may call which route and who may touch
// which user record.
package policy

import (
	"path"
	"slices"
	"strings"

	"github.com/Skotchmaster/jwt_auth/internal/models"
)

// Principal is the caller reconstructed from a verified access token.
type Principal struct {
	Username    string
	Authorities []string
}

func (p *Principal) HasAuthority(name string) bool {
	return p != nil && slices.Contains(p.Authorities, name)
}

type AccessKind int

const (
	KindPublic AccessKind = iota
	KindAuthenticated
	KindAuthority
)

type Access struct {
	Kind      AccessKind
	Authority string
}

var (
	Public        = Access{Kind: KindPublic}
	Authenticated = Access{Kind: KindAuthenticated}
)

func Authority(name string) Access {
	return Access{Kind: KindAuthority, Authority: name}
}

// Rule matches a method and an ant-style pattern. An empty Method or "*"
// matches any method.
type Rule struct {
	Method  string
	Pattern string
	Access  Access
}

func (r Rule) Matches(method, urlPath string) bool {
	if r.Method != "" && r.Method != "*" && !strings.EqualFold(r.Method, method) {
		return false
	}
	return Match(r.Pattern, urlPath)
}

type Decision int

const (
	Allow Decision = iota
	Unauthorized
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthorized:
		return "unauthorized"
	default:
		return "forbidden"
	}
}

// Table is evaluated top to bottom; the first matching rule decides and
// a request no rule matches is forbidden.
type Table []Rule

func (t Table) Decide(method, urlPath string, p *Principal) Decision {
	for _, r := range t {
		if !r.Matches(method, urlPath) {
			continue
		}
		switch r.Access.Kind {
		case KindPublic:
			return Allow
		case KindAuthenticated:
			if p == nil {
				return Unauthorized
			}
			return Allow
		case KindAuthority:
			if p == nil {
				return Unauthorized
			}
			if p.HasAuthority(r.Access.Authority) {
				return Allow
			}
			return Forbidden
		}
	}
	return Forbidden
}

// DefaultTable is the route table of the service. loginPath is the path
// the authenticator intercepts.
func DefaultTable(loginPath string) Table {
	if loginPath == "" {
		loginPath = "/login"
	}
	return Table{
		{Method: "POST", Pattern: loginPath, Access: Public},
		{Method: "POST", Pattern: "/auth/**", Access: Public},
		{Method: "GET", Pattern: "/health/**", Access: Public},
		{Method: "POST", Pattern: "/users", Access: Public},
		{Method: "GET", Pattern: "/users", Access: Authority(models.RoleAdmin)},
		{Pattern: "/roles/**", Access: Authority(models.RoleAdmin)},
		{Pattern: "/**", Access: Authenticated},
	}
}

// Match reports whether urlPath matches an ant-style pattern: "*" is one
// path segment, "**" is zero or more segments, and other wildcards follow
// path.Match within a single segment.
func Match(pattern, urlPath string) bool {
	return matchSegments(split(pattern), split(urlPath))
}

func split(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(pat, segs []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			rest := pat[1:]
			for i := 0; i <= len(segs); i++ {
				if matchSegments(rest, segs[i:]) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 || !matchOne(pat[0], segs[0]) {
			return false
		}
		pat, segs = pat[1:], segs[1:]
	}
	return len(segs) == 0
}

func matchOne(pat, seg string) bool {
	if seg == "" {
		return false
	}
	if pat == "*" {
		return true
	}
	ok, err := path.Match(pat, seg)
	return err == nil && ok
}

// IsOwnerOrAdmin allows admins everywhere and everyone else only on
// their own record.
func IsOwnerOrAdmin(actor, target *models.User) bool {
	if actor == nil || target == nil {
		return false
	}
	return actor.HasRole(models.RoleAdmin) || actor.ID == target.ID
}
