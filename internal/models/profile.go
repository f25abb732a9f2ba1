package models

import "fmt"

// Profile is the tenant role of an account.
type Profile string

const (
	ProfileAdmin  Profile = "admin"
	ProfileGarage Profile = "garage"
)

// Profiles lists every known profile.
var Profiles = []Profile{ProfileAdmin, ProfileGarage}

// Valid reports whether p is one of the known profiles.
func (p Profile) Valid() bool {
	switch p {
	case ProfileAdmin, ProfileGarage:
		return true
	}
	return false
}

func (p Profile) String() string {
	return string(p)
}

// ParseProfile converts raw input into a Profile, rejecting unknown values.
func ParseProfile(raw string) (Profile, error) {
	p := Profile(raw)
	if !p.Valid() {
		return "", fmt.Errorf("unknown profile %q", raw)
	}
	return p, nil
}
