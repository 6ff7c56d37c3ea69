package ircd

import (
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
)

// HandlerFunc executes one parsed command against a session.
type HandlerFunc func(srv *Server, s *Session, msg ircmsg.Message)

// Command describes one registered command's dispatch preconditions, per
// spec.md §4.E.
type Command struct {
	Name string

	// RequiresRegistration requires the session to have completed the
	// registration handshake before the handler runs.
	RequiresRegistration bool

	// MinParams is the minimum number of parameters the command needs. A
	// message with fewer params gets ErrNeedMoreParams instead of reaching
	// the handler.
	MinParams int

	Handler HandlerFunc
}

// Registry is the command dispatch table, replacing a long if/else chain
// with a data-driven lookup.
type Registry struct {
	commands map[string]*Command
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

// Register adds or replaces a command entry. The command's Name is
// upper-cased so lookups are case-insensitive regardless of how callers
// constructed it.
func (r *Registry) Register(cmd *Command) {
	cmd.Name = strings.ToUpper(cmd.Name)
	r.commands[cmd.Name] = cmd
}

// Lookup returns the command registered under name, if any.
func (r *Registry) Lookup(name string) (*Command, bool) {
	cmd, ok := r.commands[strings.ToUpper(name)]
	return cmd, ok
}

// commandsAllowedAwaitingPassword are the only commands a session may send
// before PASS has been accepted, per spec.md §4.C.
var commandsAllowedAwaitingPassword = map[string]bool{
	"PASS": true,
	"QUIT": true,
	"PING": true,
}

// Dispatch implements §4.E's dispatch algorithm:
//  1. unknown command -> ErrUnknownCommand (silently ignored pre-registration,
//     since a client that hasn't finished PASS/NICK/USER has no numeric
//     target worth the noise)
//  2. a connection password is configured, the session is still
//     AwaitingPassword, and the command is not PASS/QUIT/PING -> ErrPasswdMismatch
//  3. registration-gated command reached before registration -> ErrNotRegistered
//  4. too few parameters -> ErrNeedMoreParams
//  5. otherwise invoke the handler
func (r *Registry) Dispatch(srv *Server, s *Session, msg ircmsg.Message) {
	cmd, ok := r.Lookup(msg.Command)
	if !ok {
		if s.IsRegistered() {
			srv.sendNumeric(s, ErrUnknownCommand, msg.Command, "Unknown command")
		}
		return
	}

	if srv.cfg.Password != "" && s.state == AwaitingPassword && !commandsAllowedAwaitingPassword[cmd.Name] {
		srv.sendNumeric(s, ErrPasswdMismatch, "Password required")
		return
	}

	if cmd.RequiresRegistration && !s.IsRegistered() {
		srv.sendNumeric(s, ErrNotRegistered, "You have not registered")
		return
	}

	if len(msg.Params) < cmd.MinParams {
		srv.sendNumeric(s, ErrNeedMoreParams, cmd.Name, "Not enough parameters")
		return
	}

	cmd.Handler(srv, s, msg)
}
