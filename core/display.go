package core

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DisplayName returns the first non-empty of full name, username and email,
// or "Unknown User".
func (u *User) DisplayName() string {
	if u == nil {
		return "Unknown User"
	}
	for _, name := range []string{u.FullName, u.Username, u.Email} {
		if strings.TrimSpace(name) != "" {
			return name
		}
	}
	return "Unknown User"
}

// DisplayRole returns the role name, or "User" when none is set.
func (u *User) DisplayRole() string {
	if u == nil || u.Role == "" {
		return "User"
	}
	return string(u.Role)
}

// Initials returns avatar initials for name: "?" when blank, the first letter
// of a single word, otherwise the first letters of the first and last words.
func Initials(name string) string {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "?"
	case 1:
		return firstUpper(parts[0])
	}
	return firstUpper(parts[0]) + firstUpper(parts[len(parts)-1])
}

func firstUpper(word string) string {
	r, _ := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(r))
}
