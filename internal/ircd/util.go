package ircd

import "strings"

const (
	maxNickLength    = 9
	maxChannelLength = 50
)

// nickDisallowed lists the characters a nick may never contain, per
// spec.md §4.F.
const nickDisallowed = " ,*?!@.$:"

// canonicalizeNick folds a nick to its case-insensitive comparison key.
// IRC's casemapping treats {}|^ as the lowercase forms of []\~, but a plain
// ASCII lowercase fold is sufficient for catboxd's purposes.
func canonicalizeNick(nick string) string {
	return strings.ToLower(nick)
}

// canonicalizeChannel folds a channel name to its comparison key.
func canonicalizeChannel(name string) string {
	return strings.ToLower(name)
}

// isValidNick reports whether nick satisfies spec.md §4.F's nickname
// grammar: the first character may not be a digit, '-', '#', or '&', and no
// character may be a space, comma, or any of '*?!@.$:'.
func isValidNick(nick string) bool {
	if nick == "" || len(nick) > maxNickLength {
		return false
	}

	first := nick[0]
	if isDigit(first) || first == '-' || first == '#' || first == '&' {
		return false
	}

	for i := 0; i < len(nick); i++ {
		if strings.ContainsRune(nickDisallowed, rune(nick[i])) {
			return false
		}
	}
	return true
}

// isValidChannel reports whether name satisfies the channel name grammar:
// a leading '#' or '&' followed by at least one character, up to
// maxChannelLength bytes in all, none of which is a space, comma, BEL, CR or
// LF. Other control characters are not rejected.
func isValidChannel(name string) bool {
	if len(name) < 2 || len(name) > maxChannelLength {
		return false
	}
	if name[0] != '#' && name[0] != '&' {
		return false
	}
	for i := 1; i < len(name); i++ {
		switch name[i] {
		case ' ', ',', '\a', '\r', '\n':
			return false
		}
	}
	return true
}

// isValidUser reports whether a USER command's username field is usable: no
// spaces or nul bytes. The grammar here is intentionally permissive; unlike
// nicks, usernames aren't globally displayed as an addressable identifier.
func isValidUser(user string) bool {
	if user == "" {
		return false
	}
	for i := 0; i < len(user); i++ {
		switch user[i] {
		case ' ', '\x00', '\r', '\n':
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
