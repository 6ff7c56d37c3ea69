package ircd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// newTestSession builds a registered session on a fake, guaranteed-closed
// file descriptor, so Enqueue's write attempts fail fast with EBADF instead
// of silently succeeding against some real, unrelated fd in the test
// process. Each caller must pass a distinct fd, since fd doubles as the
// map key for channel membership.
func newTestSession(fd int, nick string) *Session {
	s := newSession(fd, "host.example")
	s.nick = nick
	s.user = "u"
	s.state = Registered
	return s
}

func TestChannelAddRemove(t *testing.T) {
	c := NewChannel("#test")
	alice := newTestSession(1001, "alice")

	c.Add(alice, true)
	assert.True(t, c.HasMember(alice))
	assert.True(t, c.IsOp(alice))
	assert.True(t, alice.OnChannel(c))

	c.Remove(alice)
	assert.False(t, c.HasMember(alice))
	assert.True(t, c.IsEmpty())
	assert.False(t, alice.OnChannel(c))
}

func TestChannelCanJoinInviteOnly(t *testing.T) {
	c := NewChannel("#test")
	c.SetMode(ModeInviteOnly, true)

	bob := newTestSession(1002, "bob")
	ok, reason := c.CanJoin(bob, "")
	assert.False(t, ok)
	assert.Equal(t, JoinInviteOnlyBlocked, reason)

	c.Invite("bob")
	ok, _ = c.CanJoin(bob, "")
	assert.True(t, ok)
}

func TestChannelCanJoinKeyAndLimit(t *testing.T) {
	c := NewChannel("#test")
	c.SetMode(ModeHasKey, true)
	c.SetKey("secret")

	bob := newTestSession(1002, "bob")
	ok, reason := c.CanJoin(bob, "wrong")
	assert.False(t, ok)
	assert.Equal(t, JoinBadKey, reason)

	ok, _ = c.CanJoin(bob, "secret")
	assert.True(t, ok)

	c.SetMode(ModeHasKey, false)
	c.SetMode(ModeHasUserLimit, true)
	c.SetLimit(1)
	c.Add(newTestSession(1003, "carol"), false)

	ok, reason = c.CanJoin(bob, "")
	assert.False(t, ok)
	assert.Equal(t, JoinFull, reason)
}

func TestChannelTopicLock(t *testing.T) {
	c := NewChannel("#test")
	alice := newTestSession(1001, "alice")
	c.Add(alice, true)

	bob := newTestSession(1002, "bob")
	c.Add(bob, false)

	c.SetMode(ModeTopicLocked, true)
	assert.True(t, c.CanChangeTopic(alice))
	assert.False(t, c.CanChangeTopic(bob))
}

func TestChannelModeString(t *testing.T) {
	c := NewChannel("#test")
	c.SetMode(ModeInviteOnly, true)
	c.SetMode(ModeTopicLocked, true)
	assert.Equal(t, "+it", c.ModeString())
}
