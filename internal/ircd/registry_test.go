package ircd

import (
	"testing"

	"github.com/ergochat/irc-go/ircmsg"
	"github.com/stretchr/testify/assert"
)

func TestRegistryDispatchUnknownCommand(t *testing.T) {
	srv := newTestServer()
	s := newTestSession(1001, "alice")
	srv.sessions[1001] = s
	srv.nicks["alice"] = s

	srv.registry.Dispatch(srv, s, ircmsg.Message{Command: "BOGUS"})
	out := drainOutbound(s)
	assert.Contains(t, out, ErrUnknownCommand)
}

func TestRegistryDispatchRequiresRegistration(t *testing.T) {
	srv := newTestServer()
	s := newSession(1001, "host")
	srv.sessions[1001] = s

	srv.registry.Dispatch(srv, s, ircmsg.Message{Command: "JOIN", Params: []string{"#test"}})
	out := drainOutbound(s)
	assert.Contains(t, out, ErrNotRegistered)
}

func TestRegistryDispatchNeedsMoreParams(t *testing.T) {
	srv := newTestServer()
	s := newTestSession(1001, "alice")
	srv.sessions[1001] = s
	srv.nicks["alice"] = s

	srv.registry.Dispatch(srv, s, ircmsg.Message{Command: "JOIN", Params: nil})
	out := drainOutbound(s)
	assert.Contains(t, out, ErrNeedMoreParams)
}

// drainOutbound concatenates whatever a session's outbound queue has
// accumulated. Sessions in these tests use fds that are not open in the
// test process, so nothing really got written to a socket; Enqueue's failed
// flush leaves the line sitting in s.out, which is exactly what these
// assertions inspect. The failed write also marks the session Disconnecting.
func drainOutbound(s *Session) string {
	var out string
	for _, b := range s.out {
		out += string(b)
	}
	return out
}
