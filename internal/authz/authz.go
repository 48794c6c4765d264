package authz

import (
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const (
	RoleEmployee = "employee"
	RoleApprover = "approver"
)

// Resources and actions used across the service. Every permission check in
// the system funnels through Service.Can with one of these pairs; there are
// no ad hoc role string comparisons at call sites.
const (
	ResourceLeave    = "leave"
	ResourceBalance  = "balance"
	ResourceEmployee = "employee"
	ResourceReport   = "report"

	ActionCreate  = "create"
	ActionRead    = "read"
	ActionReadAll = "read_all"
	ActionEdit    = "edit"
	ActionCancel  = "cancel"
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionWrite   = "write"
	ActionReset   = "reset"
	ActionManage  = "manage"
)

// Actor is the identity the surrounding layer resolved for the current
// request. Services trust it; authentication happened upstream.
type Actor struct {
	ID   string
	Role string
}

//go:generate mockgen -source=authz.go -destination=mock/authz_mock.go -package=mock
type Service interface {
	Can(actor Actor, resource, action string) (bool, error)
}

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
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// The policy is static: the system only knows two roles, and the approver
// role inherits everything the employee role can do.
var rbacPolicies = [][]string{
	{RoleEmployee, ResourceLeave, ActionCreate},
	{RoleEmployee, ResourceLeave, ActionRead},
	{RoleEmployee, ResourceLeave, ActionEdit},
	{RoleEmployee, ResourceLeave, ActionCancel},
	{RoleEmployee, ResourceBalance, ActionRead},
	{RoleEmployee, ResourceEmployee, ActionRead},
	{RoleEmployee, ResourceReport, ActionRead},
	{RoleApprover, ResourceLeave, ActionReadAll},
	{RoleApprover, ResourceBalance, ActionReadAll},
	{RoleApprover, ResourceReport, ActionReadAll},
	{RoleApprover, ResourceLeave, ActionApprove},
	{RoleApprover, ResourceLeave, ActionReject},
	{RoleApprover, ResourceBalance, ActionWrite},
	{RoleApprover, ResourceBalance, ActionReset},
	{RoleApprover, ResourceEmployee, ActionManage},
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.Mutex
}

func NewService() (Service, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	if _, err := enforcer.AddPolicies(rbacPolicies); err != nil {
		return nil, err
	}
	if _, err := enforcer.AddGroupingPolicy(RoleApprover, RoleEmployee); err != nil {
		return nil, err
	}

	return &service{enforcer: enforcer}, nil
}

func (s *service) Can(actor Actor, resource, action string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enforcer.Enforce(actor.Role, resource, action)
}
