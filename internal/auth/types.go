package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/david/opportunity-scout/internal/discovery"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Profile      Profile   `json:"profile"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the stored matching profile a user's discovery runs are biased
// by. It mirrors the discovery engine's profile shape.
type Profile struct {
	Skills       []string `json:"skills"`
	Keywords     []string `json:"keywords"`
	BusinessType string   `json:"business_type"`
	MinValue     int64    `json:"min_value"`
}

// ToDiscovery converts the stored profile into the engine's form.
func (p Profile) ToDiscovery() discovery.Profile {
	return discovery.Profile{
		Skills:       p.Skills,
		Keywords:     p.Keywords,
		BusinessType: p.BusinessType,
		MinValue:     p.MinValue,
	}
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
