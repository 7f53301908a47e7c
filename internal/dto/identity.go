package dto

// Identity is what a verified bearer token says about the caller.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	Provider    string
}
