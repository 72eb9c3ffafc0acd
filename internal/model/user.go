package model

type User struct {
	ID                  int     `db:"id" json:"id"`
	Email               string  `db:"email" json:"email"`
	AcumbamailAuthToken *string `db:"acumbamail_auth_token" json:"-"`
}

// AuthToken returns the stored Acumbamail token, or "" when none is set.
func (u *User) AuthToken() string {
	if u == nil || u.AcumbamailAuthToken == nil {
		return ""
	}
	return *u.AcumbamailAuthToken
}
