package domain

// Role is the platform-wide role carried in an access token.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known platform role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleOwner || r == RoleUser
}

// Actor is the authenticated identity performing a request.
type Actor struct {
	ID   string
	Role Role
}

// Access is an actor's relationship to one application, resolved once per request.
type Access struct {
	Renter bool
	Owner  bool
	Admin  bool
}

// ResolveAccess computes how actor relates to app.
func ResolveAccess(app Application, actor Actor) Access {
	return Access{
		Renter: actor.ID != "" && actor.ID == app.RenterID,
		Owner:  actor.ID != "" && actor.ID == app.Property.OwnerID,
		Admin:  actor.Role == RoleAdmin,
	}
}

// Any reports whether the actor is a party to the application at all.
func (a Access) Any() bool {
	return a.Renter || a.Owner || a.Admin
}

// CanDelete reports whether the actor may remove the application.
func (a Access) CanDelete() bool {
	return a.Renter || a.Admin
}

// Class returns the transition permission class. Owner and admin share a class
// and take precedence over the renter relationship.
func (a Access) Class() RoleClass {
	switch {
	case a.Owner || a.Admin:
		return RoleClassOwnerOrAdmin
	case a.Renter:
		return RoleClassRenter
	}
	return RoleClassNone
}
