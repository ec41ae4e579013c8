package models

import "strconv"

// Identity is the locally captured visitor record used as the user key for
// all backend calls. It is collected once via the first-run form and kept
// immutable afterwards unless the stored record is cleared externally.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// UserID returns the numeric user identifier the backend expects. The phone
// number doubles as the identifier, so a valid 11-digit phone always parses.
func (i Identity) UserID() int64 {
	id, _ := strconv.ParseInt(i.Phone, 10, 64)
	return id
}
