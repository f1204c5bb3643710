// Package authz builds the role-based access policy for the HTTP API.
//
// Roles come from the API client's token: admins may do anything, operators
// may read and issue credentials, and door terminals may only submit codes.
package authz

import (
	"fmt"
	"net/http"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
)

const (
	// RoleAdmin may call every endpoint.
	RoleAdmin = "admin"
	// RoleOperator manages day-to-day issuance.
	RoleOperator = "operator"
	// RoleTerminal is a door terminal submitting codes.
	RoleTerminal = "terminal"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// DefaultPolicies returns the built-in policy rows (sub, obj, act).
func DefaultPolicies() [][]string {
	return [][]string{
		{RoleAdmin, "*", "*"},

		{RoleOperator, "*", http.MethodGet},
		{RoleOperator, "/api/v1/credentials", http.MethodPost},
		{RoleOperator, "/api/v1/credentials/:id/acknowledge", http.MethodPost},

		{RoleTerminal, "/api/v1/access/evaluate", http.MethodPost},
	}
}

// NewEnforcer returns an in-memory enforcer loaded with policies. Extra
// grouping rows (user, role) may be passed to alias roles.
func NewEnforcer(policies [][]string, groupings ...[]string) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("authz: model: %w", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: enforcer: %w", err)
	}

	if len(policies) > 0 {
		if _, err := e.AddPolicies(policies); err != nil {
			return nil, fmt.Errorf("authz: policies: %w", err)
		}
	}
	if len(groupings) > 0 {
		if _, err := e.AddGroupingPolicies(groupings); err != nil {
			return nil, fmt.Errorf("authz: groupings: %w", err)
		}
	}

	return e, nil
}

// ValidRole reports whether role is one of the built-in roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleOperator, RoleTerminal:
		return true
	default:
		return false
	}
}
