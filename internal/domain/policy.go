package domain

// ManagerScope resolves which activity owners a manager may reach.
type ManagerScope interface {
	// Owners returns the owner ids the manager may access. A nil slice means every owner.
	Owners(manager Requester) []string
}

// GlobalManagerScope grants managers access to every owner.
type GlobalManagerScope struct{}

// Owners implements ManagerScope.
func (GlobalManagerScope) Owners(Requester) []string { return nil }

// TeamManagerScope limits each manager to an explicit set of owners, keyed by manager user id.
// Managers missing from the map reach nobody but themselves.
type TeamManagerScope map[string][]string

// Owners implements ManagerScope.
func (s TeamManagerScope) Owners(manager Requester) []string {
	owners, ok := s[manager.UserID]
	if !ok || owners == nil {
		return []string{}
	}
	return owners
}

// Policy decides instance-level access and narrows collection queries.
// Both halves read the same rules so a point lookup can never pass one and fail the other.
type Policy struct {
	managers ManagerScope
}

// NewPolicy builds a Policy. A nil scope grants managers global access.
func NewPolicy(scope ManagerScope) Policy {
	if scope == nil {
		scope = GlobalManagerScope{}
	}
	return Policy{managers: scope}
}

// CanAccessActivity reports whether r may read or write a.
func (p Policy) CanAccessActivity(r Requester, a Activity) bool {
	return p.CanAccessOwner(r, a.OwnerID)
}

// CanAccessOwner reports whether r may read or write activities owned by ownerID.
func (p Policy) CanAccessOwner(r Requester, ownerID string) bool {
	return p.ActivityFilter(r).Allows(ownerID)
}

// CanAccessUser reports whether r may read or write u: admins and the user themself.
func (p Policy) CanAccessUser(r Requester, u User) bool {
	return p.UserFilter(r).Allows(u.ID)
}
