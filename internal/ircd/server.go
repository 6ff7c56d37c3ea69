package ircd

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/sozahra/catboxd/internal/metrics"
)

// Server is a single-threaded, poll-multiplexed IRC daemon, per spec.md §5.
// There is no worker pool and no per-connection goroutine: one loop, one
// poll(2) call per iteration, non-blocking reads and writes on raw file
// descriptors. This is a deliberate departure from a goroutine-per-connection
// model; see DESIGN.md for why.
type Server struct {
	cfg Config
	log *Logger
	sink metrics.Sink

	listenFD int

	sessions map[int]*Session
	nicks    map[string]*Session
	channels map[string]*Channel
	virtuals map[int]VirtualClient

	registry *Registry

	startTime time.Time
	running   bool
	stopping  bool
}

// NewServer builds a Server with its command registry populated. It does
// not yet bind a listening socket; call Start for that.
func NewServer(cfg Config, log *Logger, sink metrics.Sink) *Server {
	if sink == nil {
		sink = metrics.Noop{}
	}
	if log == nil {
		log = StdLogger(LevelInfo)
	}
	srv := &Server{
		cfg:      cfg,
		log:      log,
		sink:     sink,
		listenFD: -1,
		sessions: make(map[int]*Session),
		nicks:    make(map[string]*Session),
		channels: make(map[string]*Channel),
		virtuals: make(map[int]VirtualClient),
	}
	srv.registry = buildRegistry()
	return srv
}

// Start opens and binds the listening socket. Run does the actual serving.
func (srv *Server) Start() error {
	fd, err := unix.Socket(unix.AF_INET6, unix.SOCK_STREAM, 0)
	if err != nil {
		// Fall back to IPv4-only if the host has no IPv6 stack.
		fd, err = unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
		if err != nil {
			return errors.Wrap(err, "unable to create socket")
		}
		if err := srv.bindAndListen4(fd); err != nil {
			_ = unix.Close(fd)
			return err
		}
		srv.listenFD = fd
		srv.startTime = time.Now()
		srv.running = true
		return nil
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return errors.Wrap(err, "unable to set SO_REUSEADDR")
	}

	port, err := parsePort(srv.cfg.ListenPort)
	if err != nil {
		_ = unix.Close(fd)
		return err
	}

	addr := &unix.SockaddrInet6{Port: port}
	if err := unix.Bind(fd, addr); err != nil {
		_ = unix.Close(fd)
		return errors.Wrap(err, "unable to bind")
	}
	if err := unix.Listen(fd, 128); err != nil {
		_ = unix.Close(fd)
		return errors.Wrap(err, "unable to listen")
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return errors.Wrap(err, "unable to set listening socket non-blocking")
	}

	srv.listenFD = fd
	srv.startTime = time.Now()
	srv.running = true
	return nil
}

func (srv *Server) bindAndListen4(fd int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return errors.Wrap(err, "unable to set SO_REUSEADDR")
	}
	port, err := parsePort(srv.cfg.ListenPort)
	if err != nil {
		return err
	}
	addr := &unix.SockaddrInet4{Port: port}
	if err := unix.Bind(fd, addr); err != nil {
		return errors.Wrap(err, "unable to bind")
	}
	if err := unix.Listen(fd, 128); err != nil {
		return errors.Wrap(err, "unable to listen")
	}
	return unix.SetNonblock(fd, true)
}

func parsePort(s string) (int, error) {
	var port int
	if _, err := fmt.Sscanf(s, "%d", &port); err != nil {
		return 0, errors.Wrapf(err, "invalid port %q", s)
	}
	return port, nil
}

// IsRunning reports whether Start has succeeded and Stop hasn't yet fully
// torn the server down.
func (srv *Server) IsRunning() bool { return srv.running }

// Stop requests that Run return after its current iteration.
func (srv *Server) Stop() {
	srv.stopping = true
}

// Run is the single-threaded event loop: build a pollfd set from the
// listening socket and every live session, block in poll(2), then service
// whatever became ready. It returns once Stop is called or poll(2) fails
// with an error other than EINTR.
func (srv *Server) Run() error {
	for !srv.stopping {
		if err := srv.iterate(); err != nil {
			return err
		}
	}
	srv.shutdown()
	return nil
}

// iterate runs one poll/service cycle. Exposed as its own method so tests
// can step the loop deterministically.
func (srv *Server) iterate() error {
	fds := srv.buildPollSet()

	n, err := unix.Poll(fds, 1000)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return errors.Wrap(err, "poll failed")
	}

	if n > 0 {
		srv.serviceReady(fds)
	}

	srv.checkTimeouts()
	srv.reapDisconnecting()
	srv.reapVirtualClients()
	return nil
}

// buildPollSet rebuilds the pollfd slice from scratch every iteration
// rather than compacting an existing array in place. The original C++
// implementation this server's architecture is grounded on tracks an
// off-by-one bug in its in-place compaction of a closed connection's slot;
// rebuilding fresh from the session map every loop sidesteps that class of
// bug entirely.
func (srv *Server) buildPollSet() []unix.PollFd {
	fds := make([]unix.PollFd, 0, len(srv.sessions)+len(srv.virtuals)+1)
	fds = append(fds, unix.PollFd{Fd: int32(srv.listenFD), Events: unix.POLLIN})

	for fd, s := range srv.sessions {
		events := int16(unix.POLLIN)
		if s.hasPendingWrites() {
			events |= unix.POLLOUT
		}
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: events})
	}

	for fd, vc := range srv.virtuals {
		events := int16(unix.POLLIN)
		if vc.WantWrite() {
			events |= unix.POLLOUT
		}
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: events})
	}
	return fds
}

func (srv *Server) serviceReady(fds []unix.PollFd) {
	for _, pfd := range fds {
		if pfd.Revents == 0 {
			continue
		}

		if int(pfd.Fd) == srv.listenFD {
			srv.acceptConnections()
			continue
		}

		if vc, ok := srv.virtuals[int(pfd.Fd)]; ok {
			if pfd.Revents&unix.POLLOUT != 0 {
				vc.OnWritable()
			}
			if pfd.Revents&unix.POLLIN != 0 {
				vc.OnReadable(srv)
			}
			continue
		}

		s, ok := srv.sessions[int(pfd.Fd)]
		if !ok {
			continue
		}

		if pfd.Revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 {
			srv.disconnect(s, "connection reset")
			continue
		}

		if pfd.Revents&unix.POLLOUT != 0 {
			s.flush()
		}

		if pfd.Revents&unix.POLLIN != 0 {
			srv.handleReadable(s)
		}
	}
}

// maxSessions bounds concurrent connections, per spec.md §4.G's Limits.
const maxSessions = 100

// acceptConnections drains every pending connection on the listening
// socket, since edge-triggered or not, a single poll wakeup may correspond
// to more than one queued connection. Connections past maxSessions are
// accepted (so the listen queue doesn't back up) and immediately closed.
func (srv *Server) acceptConnections() {
	for {
		fd, sa, err := unix.Accept4(srv.listenFD, unix.SOCK_NONBLOCK)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			srv.log.Warnf("accept failed: %s", err)
			return
		}

		if len(srv.sessions) >= maxSessions {
			srv.log.Warnf("rejecting connection: at session limit (%d)", maxSessions)
			_ = unix.Close(fd)
			continue
		}

		host := peerHost(sa)
		s := newSession(fd, host)
		srv.sessions[fd] = s
		srv.sink.IncConnections()
		srv.log.Infof("new connection from %s (fd %d)", host, fd)
	}
}

func peerHost(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return fmt.Sprintf("%d.%d.%d.%d", a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3])
	case *unix.SockaddrInet6:
		return fmt.Sprintf("%x", a.Addr)
	default:
		return "unknown"
	}
}

const readBufSize = 8192

func (srv *Server) handleReadable(s *Session) {
	buf := make([]byte, readBufSize)
	n, err := unix.Read(s.fd, buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return
		}
		srv.disconnect(s, "read error")
		return
	}
	if n == 0 {
		srv.disconnect(s, "connection closed")
		return
	}

	s.lastActivity = time.Now()

	for _, line := range s.framer.Feed(buf[:n]) {
		srv.dispatchLine(s, line)
		if s.state == Disconnecting {
			return
		}
	}
}

func (srv *Server) dispatchLine(s *Session, line string) {
	msg, ok := ParseLine(line)
	if !ok {
		return
	}
	srv.sink.IncCommands(msg.Command)
	srv.registry.Dispatch(srv, s, msg)
}

// checkTimeouts pings idle sessions and disconnects sessions that have been
// idle past DeadTime, per spec.md §5.
func (srv *Server) checkTimeouts() {
	now := time.Now()
	for _, s := range srv.sessions {
		idle := now.Sub(s.lastActivity)

		if idle >= srv.cfg.DeadTime {
			srv.disconnect(s, "ping timeout")
			continue
		}

		if idle >= srv.cfg.PingTime && now.Sub(s.lastPing) >= srv.cfg.PingTime {
			s.lastPing = now
			s.Enqueue(encodeLine(srv.prefix(), "PING", srv.cfg.ServerName))
		}
	}
}

// reapDisconnecting removes every session marked Disconnecting, after
// giving it one last chance to flush whatever's left in its outbound queue.
func (srv *Server) reapDisconnecting() {
	for fd, s := range srv.sessions {
		if s.state != Disconnecting {
			continue
		}
		s.flush()
		srv.removeSession(s)
		_ = unix.Close(fd)
	}
}

// disconnect marks a session for removal on the next reap pass rather than
// tearing it down mid-iteration, so we never invalidate the pollfd slice
// serviceReady is still iterating over.
func (srv *Server) disconnect(s *Session, reason string) {
	if s.state == Disconnecting {
		return
	}
	srv.quitSession(s, reason)
	s.state = Disconnecting
}

// quitSession implements the shared half of QUIT and involuntary
// disconnects: announce departure to every channel the session is on,
// leave them, and free the nick.
func (srv *Server) quitSession(s *Session, reason string) {
	quitLine := encodeLine(s.nickUserHost(), "QUIT", reason)
	notified := make(map[*Channel]struct{})
	for _, c := range s.channels {
		if _, done := notified[c]; done {
			continue
		}
		notified[c] = struct{}{}
		c.Broadcast(quitLine, s)
	}
	for _, c := range s.channels {
		c.Remove(s)
		if c.IsEmpty() {
			delete(srv.channels, canonicalizeChannel(c.Name))
		}
	}
	if s.nick != "" {
		delete(srv.nicks, canonicalizeNick(s.nick))
	}
}

// removeSession deletes bookkeeping for a session whose fd is about to be
// closed. It does not itself announce a QUIT; call quitSession first if the
// departure needs announcing.
func (srv *Server) removeSession(s *Session) {
	delete(srv.sessions, s.fd)
	srv.sink.DecConnections()
}

func (srv *Server) shutdown() {
	for fd, s := range srv.sessions {
		srv.quitSession(s, "server shutting down")
		_ = unix.Close(fd)
		delete(srv.sessions, fd)
	}
	if srv.listenFD >= 0 {
		_ = unix.Close(srv.listenFD)
	}
	srv.running = false
}

func (srv *Server) prefix() string { return srv.cfg.ServerName }

// sendNumeric sends a numeric reply to s. The final element of params is
// treated as free text and will be sent as a trailing parameter whenever it
// contains a space, matching how real servers format numeric replies.
func (srv *Server) sendNumeric(s *Session, code string, params ...string) {
	full := make([]string, 0, len(params)+1)
	full = append(full, s.displayNick())
	full = append(full, params...)
	s.Enqueue(encodeLine(srv.prefix(), code, full...))
}

// findNick looks up a session by nick, case-insensitively.
func (srv *Server) findNick(nick string) (*Session, bool) {
	s, ok := srv.nicks[canonicalizeNick(nick)]
	return s, ok
}

// findChannel looks up a channel by name, case-insensitively.
func (srv *Server) findChannel(name string) (*Channel, bool) {
	c, ok := srv.channels[canonicalizeChannel(name)]
	return c, ok
}

// getOrCreateChannel returns the named channel, creating an empty one if it
// doesn't yet exist.
func (srv *Server) getOrCreateChannel(name string) (*Channel, bool) {
	key := canonicalizeChannel(name)
	if c, ok := srv.channels[key]; ok {
		return c, false
	}
	c := NewChannel(name)
	srv.channels[key] = c
	return c, true
}

// registerNick claims nick for s, freeing any previous nick it held.
func (srv *Server) registerNick(s *Session, nick string) {
	if s.nick != "" {
		delete(srv.nicks, canonicalizeNick(s.nick))
	}
	s.nick = nick
	srv.nicks[canonicalizeNick(nick)] = s
}

func (srv *Server) isNickInUse(nick string) bool {
	_, ok := srv.findNick(nick)
	return ok
}

// sessionCount returns the number of live connections, for LUSER replies.
func (srv *Server) sessionCount() int { return len(srv.sessions) }

func (srv *Server) operatorCount() int {
	n := 0
	for _, s := range srv.sessions {
		if s.isOperator() {
			n++
		}
	}
	return n
}

func (srv *Server) channelCount() int { return len(srv.channels) }

// unknownConnectionCount is the count of sessions still mid-handshake, for
// RPL_LUSERUNKNOWN.
func (srv *Server) unknownConnectionCount() int {
	n := 0
	for _, s := range srv.sessions {
		if !s.IsRegistered() {
			n++
		}
	}
	return n
}

func joinList(items []string, sep string) string { return strings.Join(items, sep) }
