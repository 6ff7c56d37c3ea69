package ircd

// VirtualClient lets a non-human participant — a bot, file-transfer
// bookkeeping process — join the server's poll loop on equal footing with
// a real connection, per SPEC_FULL.md §4.H. It receives readiness
// callbacks from the same loop real sessions are serviced from; it must
// never block in those callbacks or spawn a goroutine of its own, since
// doing either would stall every other connection the loop is servicing.
//
// This package ships no concrete VirtualClient (a bot or file-transfer
// extension is explicitly peripheral per spec.md §1); RegisterVirtualClient
// and the servicing in Server.iterate exist so one can be plugged in
// without changing the core loop.
type VirtualClient interface {
	// Fd returns the file (or pipe, or eventfd) descriptor the core
	// should include in its poll set on this client's behalf.
	Fd() int

	// WantWrite reports whether the client currently has outbound data
	// queued, so the core knows whether to poll for write-readiness this
	// iteration.
	WantWrite() bool

	// OnReadable is called when Fd is ready for reading.
	OnReadable(srv *Server)

	// OnWritable is called when Fd is ready for writing.
	OnWritable()

	// Done reports whether the client has finished and should be
	// unregistered and dropped from the poll set.
	Done() bool
}

// RegisterVirtualClient adds vc to the poll loop. It will be serviced
// alongside real sessions starting on the next iteration.
func (srv *Server) RegisterVirtualClient(vc VirtualClient) {
	srv.virtuals[vc.Fd()] = vc
}

// UnregisterVirtualClient removes a virtual client by its descriptor,
// without closing it — closing is the caller's responsibility since the
// core doesn't own the descriptor's lifecycle the way it owns a session's.
func (srv *Server) UnregisterVirtualClient(fd int) {
	delete(srv.virtuals, fd)
}

// reapVirtualClients drops any registered client that has reported itself
// Done, mirroring reapDisconnecting's end-of-iteration cleanup for
// sessions.
func (srv *Server) reapVirtualClients() {
	for fd, vc := range srv.virtuals {
		if vc.Done() {
			delete(srv.virtuals, fd)
		}
	}
}
