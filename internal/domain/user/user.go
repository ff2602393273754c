package user

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Public is the shape handed back over the wire. The hash is already
// hidden by the json tag, but trimming to an explicit view keeps the
// store boundary obvious.
type Public struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Public() Public {
	return Public{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// Stats is the aggregate snapshot served to the admin dashboard.
type Stats struct {
	TotalUsers  int `json:"totalUsers"`
	TotalAdmins int `json:"totalAdmins"`
	RecentUsers int `json:"recentUsers"`
}

// RecentWindow is the lookback used for Stats.RecentUsers.
const RecentWindow = 7 * 24 * time.Hour
