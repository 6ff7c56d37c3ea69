package ircd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sozahra/catboxd/internal/metrics"
)

// newTestServer builds a Server with no bound listening socket, suitable
// for exercising dispatch and bookkeeping logic without Start/Run.
func newTestServer() *Server {
	cfg := DefaultConfig()
	return NewServer(cfg, StdLogger(LevelError), metrics.Noop{})
}

func TestServerRegisterAndFindNick(t *testing.T) {
	srv := newTestServer()
	s := newTestSession(1001, "alice")

	srv.registerNick(s, "alice")
	found, ok := srv.findNick("Alice")
	assert.True(t, ok)
	assert.Same(t, s, found)
}

func TestServerRegisterNickReplacesOld(t *testing.T) {
	srv := newTestServer()
	s := newTestSession(1001, "alice")
	srv.registerNick(s, "alice")

	srv.registerNick(s, "alicia")
	_, ok := srv.findNick("alice")
	assert.False(t, ok)

	found, ok := srv.findNick("alicia")
	assert.True(t, ok)
	assert.Same(t, s, found)
}

func TestServerGetOrCreateChannel(t *testing.T) {
	srv := newTestServer()

	c, created := srv.getOrCreateChannel("#test")
	assert.True(t, created)

	c2, created2 := srv.getOrCreateChannel("#TEST")
	assert.False(t, created2)
	assert.Same(t, c, c2)
}

func TestServerQuitSessionFreesNickAndChannels(t *testing.T) {
	srv := newTestServer()
	alice := newTestSession(1001, "alice")
	srv.registerNick(alice, "alice")

	c, _ := srv.getOrCreateChannel("#test")
	c.Add(alice, true)
	srv.channels["#test"] = c

	srv.quitSession(alice, "bye")

	_, ok := srv.findNick("alice")
	assert.False(t, ok)
	_, ok = srv.findChannel("#test")
	assert.False(t, ok, "channel should be destroyed once its last member quits")
}

func TestServerUnknownConnectionCount(t *testing.T) {
	srv := newTestServer()
	unreg := newSession(1001, "host")
	reg := newTestSession(1002, "alice")
	srv.sessions[1001] = unreg
	srv.sessions[1002] = reg

	assert.Equal(t, 1, srv.unknownConnectionCount())
	assert.Equal(t, 2, srv.sessionCount())
}
