package authz

import (
	"fmt"

	"community-recycle-tracker/pkg/auth"
	"community-recycle-tracker/pkg/config"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("authz", fx.Provide(NewEnforcer))

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
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// defaultPolicies are grouped per role. Organizers inherit recycler
// permissions and admins may do anything.
var defaultPolicies = [][]string{
	{auth.RoleRecycler, "/events", "GET"},
	{auth.RoleRecycler, "/events/joined", "GET"},
	{auth.RoleRecycler, "/events/:eventId", "GET"},
	{auth.RoleRecycler, "/events/:eventId/join", "POST"},
	{auth.RoleRecycler, "/events/:eventId/cancel", "POST"},
	{auth.RoleRecycler, "/participations/:id/transitions", "GET"},
	{auth.RoleRecycler, "/material-logs", "*"},
	{auth.RoleRecycler, "/earnings", "GET"},
	{auth.RoleRecycler, "/earnings/weekly", "GET"},
	{auth.RoleRecycler, "/dashboard", "GET"},
	{auth.RoleRecycler, "/rates", "GET"},
	{auth.RoleRecycler, "/rates/:material", "GET"},
	{auth.RoleRecycler, "/recyclers/:id", "GET"},
	{auth.RoleRecycler, "/recyclers/:id/verification", "GET"},
	{auth.RoleRecycler, "/recyclers/:id/photo", "*"},
	{auth.RoleRecycler, "/ledger/*", "GET"},
	{auth.RoleOrganizer, "/events", "POST"},
	{auth.RoleOrganizer, "/events/:eventId/participants/:recyclerId/check-in", "POST"},
	{auth.RoleAdmin, "/*", "*"},
}

var defaultGroups = [][]string{
	{auth.RoleOrganizer, auth.RoleRecycler},
}

type Authorizer interface {
	Allow(role, path, method string) (bool, error)
}

type enforcer struct {
	e *casbin.Enforcer
}

// NewEnforcer loads access_control.model/policy files when both are set,
// otherwise the built-in RBAC model and policies.
func NewEnforcer(cfg *config.Config) (Authorizer, error) {
	if cfg.AccessControl.Model != "" && cfg.AccessControl.Policy != "" {
		e, err := casbin.NewEnforcer(cfg.AccessControl.Model, cfg.AccessControl.Policy)
		if err != nil {
			return nil, fmt.Errorf("load access control files: %w", err)
		}
		zap.L().Info("access control loaded from files", zap.String("model", cfg.AccessControl.Model))
		return &enforcer{e: e}, nil
	}

	return NewDefault()
}

func NewDefault() (Authorizer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	if _, err := e.AddPolicies(defaultPolicies); err != nil {
		return nil, err
	}
	if _, err := e.AddGroupingPolicies(defaultGroups); err != nil {
		return nil, err
	}

	return &enforcer{e: e}, nil
}

func (a *enforcer) Allow(role, path, method string) (bool, error) {
	return a.e.Enforce(role, path, method)
}
