package ircd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// dispatchLine is a small test shim around Registry.Dispatch that mirrors
// what Server.dispatchLine does for a real connection, without requiring a
// live socket.
func dispatchLine(srv *Server, s *Session, line string) {
	msg, ok := ParseLine(line)
	if !ok {
		return
	}
	srv.registry.Dispatch(srv, s, msg)
}

func registerSession(srv *Server, s *Session, nick string) {
	dispatchLine(srv, s, "NICK "+nick)
	dispatchLine(srv, s, "USER "+nick+" 0 * :"+nick+" Real Name")
}

func TestRegistrationHandshakeSendsWelcome(t *testing.T) {
	srv := newTestServer()
	s := newSession(1001, "host.example")
	srv.sessions[1001] = s

	registerSession(srv, s, "alice")

	assert.True(t, s.IsRegistered())
	out := drainOutbound(s)
	assert.Contains(t, out, RplWelcome)
	assert.Contains(t, out, RplEndOfMotd)
}

func TestNickCollisionDuringRegistration(t *testing.T) {
	srv := newTestServer()
	alice := newSession(1001, "host")
	srv.sessions[1001] = alice
	registerSession(srv, alice, "alice")

	bob := newSession(1002, "host")
	srv.sessions[1002] = bob
	dispatchLine(srv, bob, "NICK alice")

	out := drainOutbound(bob)
	assert.Contains(t, out, ErrNicknameInUse)
	assert.False(t, bob.IsRegistered())
}

func TestJoinAndPrivmsgDeliversToChannel(t *testing.T) {
	srv := newTestServer()
	alice := newSession(1001, "host")
	srv.sessions[1001] = alice
	registerSession(srv, alice, "alice")

	bob := newSession(1002, "host")
	srv.sessions[1002] = bob
	registerSession(srv, bob, "bob")

	dispatchLine(srv, alice, "JOIN #test")
	dispatchLine(srv, bob, "JOIN #test")

	alice.out = nil
	bob.out = nil

	dispatchLine(srv, alice, "PRIVMSG #test :hello room")

	out := drainOutbound(bob)
	assert.Contains(t, out, "PRIVMSG #test :hello room")
	// PRIVMSG never echoes back to the sender.
	assert.Empty(t, drainOutbound(alice))
}

func TestJoinInviteOnlyRequiresInvite(t *testing.T) {
	srv := newTestServer()
	alice := newSession(1001, "host")
	srv.sessions[1001] = alice
	registerSession(srv, alice, "alice")
	dispatchLine(srv, alice, "JOIN #secret")
	dispatchLine(srv, alice, "MODE #secret +i")

	bob := newSession(1002, "host")
	srv.sessions[1002] = bob
	registerSession(srv, bob, "bob")

	bob.out = nil
	dispatchLine(srv, bob, "JOIN #secret")
	assert.Contains(t, drainOutbound(bob), ErrInviteOnlyChan)

	dispatchLine(srv, alice, "INVITE bob #secret")
	bob.out = nil
	dispatchLine(srv, bob, "JOIN #secret")

	c, ok := srv.findChannel("#secret")
	assert.True(t, ok)
	assert.True(t, c.HasMember(bob))
}

func TestKickRequiresChanOp(t *testing.T) {
	srv := newTestServer()
	alice := newSession(1001, "host")
	srv.sessions[1001] = alice
	registerSession(srv, alice, "alice")
	dispatchLine(srv, alice, "JOIN #test")

	bob := newSession(1002, "host")
	srv.sessions[1002] = bob
	registerSession(srv, bob, "bob")
	dispatchLine(srv, bob, "JOIN #test")

	bob.out = nil
	dispatchLine(srv, bob, "KICK #test alice")
	assert.Contains(t, drainOutbound(bob), ErrChanOpPrivsNeeded)

	alice.out = nil
	dispatchLine(srv, alice, "KICK #test bob :bye")

	c, _ := srv.findChannel("#test")
	assert.False(t, c.HasMember(bob))
}

func TestQuitAnnouncesToChannelAndFreesNick(t *testing.T) {
	srv := newTestServer()
	alice := newSession(1001, "host")
	srv.sessions[1001] = alice
	registerSession(srv, alice, "alice")
	dispatchLine(srv, alice, "JOIN #test")

	bob := newSession(1002, "host")
	srv.sessions[1002] = bob
	registerSession(srv, bob, "bob")
	dispatchLine(srv, bob, "JOIN #test")

	bob.out = nil
	dispatchLine(srv, alice, "QUIT :leaving now")

	assert.True(t, strings.Contains(drainOutbound(bob), "QUIT :leaving now"))
	assert.Equal(t, Disconnecting, alice.state)
	_, ok := srv.findNick("alice")
	assert.False(t, ok)
}

func TestAwayMarksReplyOnPrivmsg(t *testing.T) {
	srv := newTestServer()
	alice := newSession(1001, "host")
	srv.sessions[1001] = alice
	registerSession(srv, alice, "alice")

	bob := newSession(1002, "host")
	srv.sessions[1002] = bob
	registerSession(srv, bob, "bob")
	dispatchLine(srv, bob, "AWAY :gone fishing")

	alice.out = nil
	dispatchLine(srv, alice, "PRIVMSG bob :you there?")

	assert.Contains(t, drainOutbound(alice), RplAway)
}
