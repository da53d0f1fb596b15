package model

import "time"

// Role is a marketplace role. The auth provider only proves identity; roles live on the profile.
type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleGuest || r == RoleHost || r == RoleAdmin
}

// CanHost reports whether the role may manage experiences.
func (r Role) CanHost() bool {
	return r == RoleHost || r == RoleAdmin
}

// Profile is a marketplace user. ID equals the auth provider's subject.
type Profile struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name"`
	AvatarPath      string    `json:"-"`
	AvatarURL       string    `json:"avatar_url,omitempty"`
	Bio             string    `json:"bio"`
	Phone           string    `json:"phone,omitempty"`
	Location        string    `json:"location"`
	Role            Role      `json:"role"`
	StripeAccountID string    `json:"-"`
	PayoutsEnabled  bool      `json:"payouts_enabled"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PublicProfile is the view of a profile shown to other users.
type PublicProfile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Bio       string    `json:"bio"`
	Location  string    `json:"location"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Public strips private fields.
func (p *Profile) Public() PublicProfile {
	return PublicProfile{
		ID:        p.ID,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
		Bio:       p.Bio,
		Location:  p.Location,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
	}
}
