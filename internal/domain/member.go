package domain

import "time"

// Member is the chat service's user model as returned by the auth and
// profile endpoints. The password never appears in responses.
type Member struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// AuthGrant is the payload returned by register and login.
type AuthGrant struct {
	Token  string `json:"token"`
	Member Member `json:"member"`
}

// ProfileUpdate carries the fields of a profile change. Empty fields are
// omitted from the request; at least one must be set.
type ProfileUpdate struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

func (u ProfileUpdate) IsEmpty() bool {
	return u.Username == "" && u.Password == ""
}
