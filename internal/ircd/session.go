package ircd

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// RegState is a client session's position in the registration handshake.
type RegState int

const (
	AwaitingPassword RegState = iota
	PasswordAccepted
	Registered
	Disconnecting
)

// MemberFlags are the per-member flags a session can hold within a single
// channel.
type MemberFlags uint8

const (
	FlagOp MemberFlags = 1 << iota
	FlagVoice
)

// outboundWatermark bounds how much unsent data we'll hold for an
// unresponsive peer before giving up on it (§5 Backpressure).
const outboundWatermark = 64 * 1024

// Session is a single connection's state, per spec.md §3/§4.C.
type Session struct {
	fd   int
	host string

	nick     string
	user     string
	realName string

	state    RegState
	operator bool
	away     bool
	awayMsg  string

	channels map[string]*Channel

	framer *Framer
	out    [][]byte
	outLen int

	lastActivity time.Time
	lastPing     time.Time
}

func newSession(fd int, host string) *Session {
	now := time.Now()
	return &Session{
		fd:           fd,
		host:         host,
		state:        AwaitingPassword,
		channels:     make(map[string]*Channel),
		framer:       NewFramer(),
		lastActivity: now,
		lastPing:     now,
	}
}

func (s *Session) IsRegistered() bool { return s.state == Registered }

func (s *Session) isOperator() bool { return s.operator }

// nickUserHost formats the nick!user@host form used as a message prefix.
func (s *Session) nickUserHost() string {
	return fmt.Sprintf("%s!~%s@%s", s.nick, s.user, s.host)
}

func (s *Session) displayNick() string {
	if s.nick == "" {
		return "*"
	}
	return s.nick
}

// OnChannel reports whether the session is a member of c.
func (s *Session) OnChannel(c *Channel) bool {
	_, ok := s.channels[canonicalizeChannel(c.Name)]
	return ok
}

// join records channel membership on the session side. Idempotent.
func (s *Session) join(c *Channel) {
	s.channels[canonicalizeChannel(c.Name)] = c
}

// leave removes channel membership on the session side. Idempotent.
func (s *Session) leave(c *Channel) {
	delete(s.channels, canonicalizeChannel(c.Name))
}

// Enqueue appends an already CRLF-terminated wire line to the outbound queue
// and attempts a non-blocking flush. try_send in spec.md §4.C.
func (s *Session) Enqueue(line string) {
	s.out = append(s.out, []byte(line))
	s.outLen += len(line)

	if s.outLen > outboundWatermark {
		s.state = Disconnecting
		return
	}

	s.flush()
}

// flush drains as much of the outbound queue as the kernel will accept
// without blocking. A partial write leaves the unsent remainder at the head
// of the queue. A fatal write error marks the session Disconnecting.
func (s *Session) flush() {
	for len(s.out) > 0 {
		head := s.out[0]

		n, err := unix.Write(s.fd, head)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			s.state = Disconnecting
			return
		}

		if n < len(head) {
			s.out[0] = head[n:]
			s.outLen -= n
			return
		}

		s.outLen -= len(head)
		s.out = s.out[1:]
	}
}

// hasPendingWrites reports whether the session has unsent outbound data,
// used to decide whether to poll for write-readiness.
func (s *Session) hasPendingWrites() bool {
	return len(s.out) > 0
}
