package auth

import (
	"github.com/frahmantamala/hr-directory/internal"
)

// Operation is the class of action a request performs on directory data.
type Operation string

const (
	OperationRead   Operation = "READ"
	OperationWrite  Operation = "WRITE"
	OperationDelete Operation = "DELETE"
	OperationAdmin  Operation = "ADMIN"
)

const (
	GroupReadOnly   = "HR_ReadOnly"
	GroupReadWrite  = "HR_ReadWrite"
	GroupFullAccess = "HR_FullAccess"
)

const (
	RoleSuperuser = "Superuser"
	RoleNone      = "No Role"
)

// RoleGroups are the HR tiers, lowest first.
var RoleGroups = []string{GroupReadOnly, GroupReadWrite, GroupFullAccess}

var allowedGroups = map[Operation][]string{
	OperationRead:   {GroupReadOnly, GroupReadWrite, GroupFullAccess},
	OperationWrite:  {GroupReadWrite, GroupFullAccess},
	OperationDelete: {GroupFullAccess},
	OperationAdmin:  {},
}

var denialMessages = map[Operation]string{
	OperationRead:   "You need at least Read-Only access to view employee data.",
	OperationWrite:  "You need at least Read-Write access to create or modify employee data. Your current role only allows viewing.",
	OperationDelete: "You need Full Access role to delete employee data. Your current role does not allow deletions.",
	OperationAdmin:  "Only superusers can perform this action. HR staff cannot manage user accounts or assign roles.",
}

// Identity is what the policy needs to know about a caller.
type Identity interface {
	IsSuperuser() bool
	GroupNames() []string
}

// Policy decides whether an identity may perform an operation. It has no
// side effects.
type Policy struct{}

func NewPolicy() *Policy {
	return &Policy{}
}

// Authorize returns nil when allowed, an UNAUTHORIZED error when identity is
// nil and a FORBIDDEN error carrying the tier message otherwise.
func (p *Policy) Authorize(identity Identity, op Operation) error {
	if identity == nil {
		return internal.ErrAuthenticationRequired
	}
	if identity.IsSuperuser() {
		return nil
	}

	allowed, known := allowedGroups[op]
	if !known {
		return internal.NewForbiddenError("Unknown operation "+string(op), internal.ErrCodeInsufficientRole)
	}
	if HasAnyGroup(identity.GroupNames(), allowed) {
		return nil
	}
	return internal.NewForbiddenError(denialMessages[op], internal.ErrCodeInsufficientRole)
}

// EffectiveRole reports Superuser, else the first HR group in membership
// order, else No Role.
func EffectiveRole(identity Identity) string {
	if identity == nil {
		return RoleNone
	}
	if identity.IsSuperuser() {
		return RoleSuperuser
	}
	for _, g := range identity.GroupNames() {
		if IsRoleGroup(g) {
			return g
		}
	}
	return RoleNone
}

func IsRoleGroup(name string) bool {
	for _, g := range RoleGroups {
		if g == name {
			return true
		}
	}
	return false
}

func HasAnyGroup(userGroups []string, requiredGroups []string) bool {
	for _, userGroup := range userGroups {
		for _, required := range requiredGroups {
			if userGroup == required {
				return true
			}
		}
	}
	return false
}
