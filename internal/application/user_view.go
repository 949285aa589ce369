package application

import "github.com/oksasatya/mexyapp-accounts/internal/domain/entity"

// UserView is the read-only projection handed to callers.
type UserView struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Status   string   `json:"status"`
	Roles    []string `json:"roles"`
}

// NewUserView projects a user; roles come out in a stable, sorted order.
func NewUserView(u *entity.User) *UserView {
	roles := u.Roles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return &UserView{
		ID:       u.ID(),
		Username: u.Username(),
		Email:    u.Email(),
		Status:   u.Status().String(),
		Roles:    names,
	}
}
