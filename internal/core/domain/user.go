package domain

// Roles known to the catalog.
const (
	RoleAdmin          = "admin"
	RoleStaff          = "staff"
	RoleDepartmentHead = "department-head"
	RoleCustomer       = "customer"
)

// User models an authenticated actor. Users are loaded once at startup and
// never modified.
type User struct {
	ID           string   `json:"id" yaml:"id"`
	Username     string   `json:"username" yaml:"username"`
	PasswordHash string   `json:"-" yaml:"password_hash"`
	Email        string   `json:"email,omitempty" yaml:"email"`
	Roles        []string `json:"roles" yaml:"roles"`
}

// HasAnyRole reports whether the user holds at least one of required. An
// empty required set always passes.
func (u *User) HasAnyRole(required ...string) bool {
	if len(required) == 0 {
		return true
	}
	if u == nil {
		return false
	}
	for _, r := range required {
		for _, have := range u.Roles {
			if r == have {
				return true
			}
		}
	}
	return false
}
