package domain

// ActivityScope narrows an activity query. All wins over OwnerIDs.
type ActivityScope struct {
	All      bool
	OwnerIDs []string
}

// Allows reports whether an activity owned by ownerID is inside the scope.
func (s ActivityScope) Allows(ownerID string) bool {
	if s.All {
		return true
	}
	for _, id := range s.OwnerIDs {
		if id == ownerID {
			return true
		}
	}
	return false
}

// UserScope narrows a user query to everything or a single user id.
type UserScope struct {
	All    bool
	UserID string
}

// Allows reports whether the user with id is inside the scope.
func (s UserScope) Allows(id string) bool {
	return s.All || (s.UserID != "" && s.UserID == id)
}

// ActivityFilter returns the activities r may see: admins see everything, managers
// see their scope plus their own, everybody else sees only their own.
func (p Policy) ActivityFilter(r Requester) ActivityScope {
	if r.IsAdmin {
		return ActivityScope{All: true}
	}
	if r.IsManager {
		owners := p.managers.Owners(r)
		if owners == nil {
			return ActivityScope{All: true}
		}
		ids := make([]string, 0, len(owners)+1)
		ids = append(ids, r.UserID)
		for _, id := range owners {
			if id != r.UserID {
				ids = append(ids, id)
			}
		}
		return ActivityScope{OwnerIDs: ids}
	}
	return ActivityScope{OwnerIDs: []string{r.UserID}}
}

// UserFilter returns the users r may see: admins see everyone, others only themselves.
func (p Policy) UserFilter(r Requester) UserScope {
	if r.IsAdmin {
		return UserScope{All: true}
	}
	return UserScope{UserID: r.UserID}
}
