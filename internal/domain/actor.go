package domain

// RoleAdmin may mutate any resource regardless of ownership.
const RoleAdmin = "admin"

// Actor is the authenticated principal supplied by the auth collaborator.
// catalogd performs ownership checks against it but never issues sessions.
type Actor struct {
	ID   string
	Role string
}

// Known reports whether an authenticated principal is present.
func (a Actor) Known() bool { return a.ID != "" }

// CanManage reports whether the actor may mutate an entity owned by ownerID.
func (a Actor) CanManage(ownerID string) bool {
	if !a.Known() {
		return false
	}
	return a.ID == ownerID || a.Role == RoleAdmin
}
