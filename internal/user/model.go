package user

import "time"

// Role groups gating endpoint access.
const (
	GroupManager      = "Manager"
	GroupDeliveryCrew = "Delivery crew"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsSuperuser  bool      `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// Principal is the authenticated caller with its group memberships resolved.
type Principal struct {
	User
	Groups []string
}

func (p *Principal) InGroup(name string) bool {
	if p == nil {
		return false
	}
	for _, g := range p.Groups {
		if g == name {
			return true
		}
	}
	return false
}

// IsManager reports Manager membership; superusers count as managers.
func (p *Principal) IsManager() bool {
	return p != nil && (p.IsSuperuser || p.InGroup(GroupManager))
}

func (p *Principal) IsDeliveryCrew() bool { return p.InGroup(GroupDeliveryCrew) }

// IsCustomer is true for authenticated users without any staff role.
func (p *Principal) IsCustomer() bool {
	return p != nil && !p.IsManager() && !p.IsDeliveryCrew()
}

// RegisterRequest payload of user registration.
// swagger:model RegisterRequest
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=150" example:"mario"`
	Email    string `json:"email"    binding:"omitempty,email"  example:"mario@littlelemon.com"`
	Password string `json:"password" binding:"required,min=8,max=72" example:"lemon-pass-123"`
}

// LoginRequest payload of token login.
// swagger:model LoginRequest
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// GroupMemberRequest payload to add a user to a role group.
// swagger:model GroupMemberRequest
type GroupMemberRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
}

// MeResponse is the current user with its groups.
type MeResponse struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Groups   []string `json:"groups"`
}
