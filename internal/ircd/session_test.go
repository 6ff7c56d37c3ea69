package ircd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionDisplayNick(t *testing.T) {
	s := newSession(-1, "host")
	assert.Equal(t, "*", s.displayNick())

	s.nick = "alice"
	assert.Equal(t, "alice", s.displayNick())
}

func TestSessionNickUserHost(t *testing.T) {
	s := newSession(-1, "example.com")
	s.nick = "alice"
	s.user = "alicia"
	assert.Equal(t, "alice!~alicia@example.com", s.nickUserHost())
}

func TestSessionEnqueueWriteErrorDisconnects(t *testing.T) {
	// fd -1 makes every write fail with EBADF, a fatal write error that
	// Enqueue needs to degrade gracefully on: it should mark the session
	// Disconnecting rather than panic or loop.
	s := newSession(-1, "host")
	s.Enqueue("PING x\r\n")
	assert.Equal(t, Disconnecting, s.state)
}

func TestSessionJoinLeave(t *testing.T) {
	s := newSession(1, "host")
	c := NewChannel("#test")

	s.join(c)
	assert.True(t, s.OnChannel(c))

	s.leave(c)
	assert.False(t, s.OnChannel(c))
}
