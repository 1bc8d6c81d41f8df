package config

import (
	"crypto/subtle"
	"fmt"
	"strings"
)

// Users is the static login allow-list.
type Users map[string]string

// ParseUsers reads "user:pass,user:pass". An empty string yields an empty
// list, which rejects every login.
func ParseUsers(s string) (Users, error) {
	users := Users{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, pass, ok := strings.Cut(pair, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" || pass == "" {
			return nil, fmt.Errorf("invalid AUTH_USERS entry %q: want user:password", name)
		}
		if _, dup := users[name]; dup {
			return nil, fmt.Errorf("duplicate AUTH_USERS entry %q", name)
		}
		users[name] = pass
	}
	return users, nil
}

// Check reports whether the pair is on the list. Passwords are compared
// in constant time.
func (u Users) Check(name, pass string) bool {
	want, ok := u[strings.TrimSpace(name)]
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(pass)) == 1
}
