package domain

import "strings"

type User struct {
	ID    int64   `json:"id"`
	Phone string  `json:"phone"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
	Role  string  `json:"role"`
}

type CreateUserRequest struct {
	Phone string  `json:"phone"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
	Role  string  `json:"role"`
}

// Valid user roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

func (r *CreateUserRequest) Normalize() {
	r.Phone = strings.TrimSpace(r.Phone)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			r.Name = nil
		} else {
			r.Name = &name
		}
	}
}

func (r *CreateUserRequest) Validate() error {
	if r.Phone == "" || r.Email == "" || r.Role == "" {
		return &ValidationError{Message: "phone, email and role are required"}
	}
	if r.Role != RoleAdmin && r.Role != RoleUser {
		return &ValidationError{Message: "role must be 'admin' or 'user'"}
	}
	return nil
}

// Device is a session held by the external device-session service,
// identified by its JID. The server only ever reads and deletes them.
type Device struct {
	JID string `json:"jid"`
}
