package models

// UserFromAuth only use in middleware; it carries the identity the session
// token was issued for, nothing more.
type UserFromAuth struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Wallet   string `json:"wallet"`
}
