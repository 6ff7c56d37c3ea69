package ircd

import (
	"strings"
	"time"
)

// Channel mode bits, per spec.md §3/§4.D.
type ChanMode uint8

const (
	ModeInviteOnly ChanMode = 1 << iota // i
	ModeTopicLocked                     // t
	ModeHasKey                          // k
	ModeHasUserLimit                    // l
)

// JoinReject explains why CanJoin refused a session.
type JoinReject int

const (
	JoinOK JoinReject = iota
	JoinInviteOnlyBlocked
	JoinBadKey
	JoinFull
)

// Channel is a named fan-out group, per spec.md §3/§4.D.
type Channel struct {
	// Name is stored in its original case; all lookups key off the
	// canonicalized (lowercased) form.
	Name  string
	Topic string

	modes ChanMode
	key   string
	limit int

	// order preserves insertion order for NAMES and WHO listings.
	order   []int
	members map[int]*Session
	flags   map[int]MemberFlags

	invites map[string]struct{}

	created time.Time
}

// NewChannel creates an empty channel shell. The caller must still Add the
// creating session.
func NewChannel(name string) *Channel {
	return &Channel{
		Name:    name,
		members: make(map[int]*Session),
		flags:   make(map[int]MemberFlags),
		invites: make(map[string]struct{}),
		created: time.Now(),
	}
}

// Add admits a session to the channel. Adding an existing member is a
// silent no-op (callers are expected to check membership themselves when
// they need to distinguish "already joined" from "just joined").
func (c *Channel) Add(s *Session, asOp bool) {
	if _, exists := c.members[s.fd]; exists {
		return
	}

	c.members[s.fd] = s
	c.order = append(c.order, s.fd)

	var fl MemberFlags
	if asOp {
		fl = FlagOp
	}
	c.flags[s.fd] = fl

	s.join(c)
}

// Remove evicts a session from the channel. The caller is responsible for
// deleting the channel from the server's registry if IsEmpty() becomes true.
func (c *Channel) Remove(s *Session) {
	if _, exists := c.members[s.fd]; !exists {
		return
	}

	delete(c.members, s.fd)
	delete(c.flags, s.fd)

	for i, fd := range c.order {
		if fd == s.fd {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}

	s.leave(c)
}

// IsEmpty reports whether the channel has no members and should be
// destroyed.
func (c *Channel) IsEmpty() bool {
	return len(c.members) == 0
}

// Broadcast enqueues line on every member except exclude (which may be nil).
func (c *Channel) Broadcast(line string, exclude *Session) {
	for _, fd := range c.order {
		member := c.members[fd]
		if exclude != nil && member.fd == exclude.fd {
			continue
		}
		member.Enqueue(line)
	}
}

// Members returns the channel's members in join order.
func (c *Channel) Members() []*Session {
	out := make([]*Session, 0, len(c.order))
	for _, fd := range c.order {
		out = append(out, c.members[fd])
	}
	return out
}

// HasMember reports channel membership by session.
func (c *Channel) HasMember(s *Session) bool {
	_, ok := c.members[s.fd]
	return ok
}

// IsOp reports whether s holds ChanOp on the channel.
func (c *Channel) IsOp(s *Session) bool {
	return c.flags[s.fd]&FlagOp != 0
}

// IsVoiced reports whether s holds Voice on the channel.
func (c *Channel) IsVoiced(s *Session) bool {
	return c.flags[s.fd]&FlagVoice != 0
}

// SetOp grants or revokes ChanOp for a member.
func (c *Channel) SetOp(s *Session, on bool) {
	if _, exists := c.members[s.fd]; !exists {
		return
	}
	if on {
		c.flags[s.fd] |= FlagOp
	} else {
		c.flags[s.fd] &^= FlagOp
	}
}

// SetVoice grants or revokes Voice for a member.
func (c *Channel) SetVoice(s *Session, on bool) {
	if _, exists := c.members[s.fd]; !exists {
		return
	}
	if on {
		c.flags[s.fd] |= FlagVoice
	} else {
		c.flags[s.fd] &^= FlagVoice
	}
}

// HasMode reports whether m is currently set.
func (c *Channel) HasMode(m ChanMode) bool { return c.modes&m != 0 }

// SetMode sets or clears a mode bit. Setting an already-set mode (or
// clearing an already-clear one) is a no-op and the caller should treat it
// as "no observable change" for broadcast purposes.
func (c *Channel) SetMode(m ChanMode, enabled bool) (changed bool) {
	was := c.modes&m != 0
	if was == enabled {
		return false
	}
	if enabled {
		c.modes |= m
	} else {
		c.modes &^= m
	}
	return true
}

// ModeString renders the currently-set simple mode letters (no params).
func (c *Channel) ModeString() string {
	var b strings.Builder
	b.WriteByte('+')
	if c.modes&ModeInviteOnly != 0 {
		b.WriteByte('i')
	}
	if c.modes&ModeTopicLocked != 0 {
		b.WriteByte('t')
	}
	if c.modes&ModeHasKey != 0 {
		b.WriteByte('k')
	}
	if c.modes&ModeHasUserLimit != 0 {
		b.WriteByte('l')
	}
	return b.String()
}

// CanJoin implements §4.D's can_join logic.
func (c *Channel) CanJoin(s *Session, key string) (bool, JoinReject) {
	if c.modes&ModeInviteOnly != 0 && !c.IsInvited(s.nick) {
		return false, JoinInviteOnlyBlocked
	}
	if c.modes&ModeHasKey != 0 && key != c.key {
		return false, JoinBadKey
	}
	if c.modes&ModeHasUserLimit != 0 && len(c.members) >= c.limit {
		return false, JoinFull
	}
	return true, JoinOK
}

// CanChangeTopic implements §4.D's can_change_topic logic.
func (c *Channel) CanChangeTopic(s *Session) bool {
	if !c.HasMember(s) {
		return false
	}
	return c.modes&ModeTopicLocked == 0 || c.IsOp(s)
}

// Invite records nick as invited. Case-insensitive.
func (c *Channel) Invite(nick string) {
	c.invites[canonicalizeNick(nick)] = struct{}{}
}

// IsInvited reports whether nick has an outstanding invite.
func (c *Channel) IsInvited(nick string) bool {
	_, ok := c.invites[canonicalizeNick(nick)]
	return ok
}

// RemoveInvite clears any outstanding invite for nick.
func (c *Channel) RemoveInvite(nick string) {
	delete(c.invites, canonicalizeNick(nick))
}

// SetKey sets or clears the channel key.
func (c *Channel) SetKey(key string) { c.key = key }

// Key returns the current channel key.
func (c *Channel) Key() string { return c.key }

// SetLimit sets the user limit.
func (c *Channel) SetLimit(n int) { c.limit = n }

// Limit returns the current user limit.
func (c *Channel) Limit() int { return c.limit }

// MemberNamesReply renders a member's nick prefixed with @ or + for NAMES /
// WHO style listings.
func (c *Channel) MemberNamesReply(s *Session) string {
	switch {
	case c.IsOp(s):
		return "@" + s.nick
	case c.IsVoiced(s):
		return "+" + s.nick
	default:
		return s.nick
	}
}
