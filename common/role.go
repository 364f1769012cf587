package common

// Role is a user's capability level inside one class. The empty role means
// the user is not a member. All access checks go through these predicates
// so there is a single source of truth for what each role may do.
type Role string

func (r Role) IsMember() bool {
	return r != ""
}

// IsTreasurerLike reports whether the role is authorized for financial
// operations (verification, invalidation, expenses, fund account).
func (r Role) IsTreasurerLike() bool {
	return r == RoleOwner || r == RoleTreasurer
}

func (r Role) IsOwner() bool {
	return r == RoleOwner
}
