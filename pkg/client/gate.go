package client

import "github.com/wadjakorntonsri/paylinks/pkg/core/domain"

// LoginRoute is where a role signs in
func LoginRoute(role domain.Role) string {
	if role == domain.RoleAdmin {
		return "/admin/login"
	}
	return "/employee/login"
}

// DashboardRoute is where a role lands after signing in
func DashboardRoute(role domain.Role) string {
	if role == domain.RoleAdmin {
		return "/admin/dashboard"
	}
	return "/employee/dashboard"
}

// GateResult says whether protected content may render.
// When Allowed is false, Redirect names the login route and nothing else is rendered.
type GateResult struct {
	Allowed  bool
	Identity Identity
	Redirect string
}

// Gate checks only the persisted identity; token validity is discovered by the first API call.
func Gate(s *Session, role domain.Role) GateResult {
	id, ok := s.Identity(role)
	if !ok {
		return GateResult{Redirect: LoginRoute(role)}
	}
	return GateResult{Allowed: true, Identity: id}
}
