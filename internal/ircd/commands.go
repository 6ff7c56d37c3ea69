package ircd

import "github.com/ergochat/irc-go/ircmsg"

// handleMode dispatches MODE to its channel or user form depending on
// whether the first parameter names a channel, per §4.F.
func handleMode(srv *Server, s *Session, msg ircmsg.Message) {
	target := msg.Params[0]
	if len(target) > 0 && (target[0] == '#' || target[0] == '&') {
		handleChannelMode(srv, s, msg)
		return
	}
	handleUserMode(srv, s, msg)
}

// buildRegistry assembles the full RFC 1459 command set into a Registry,
// dispatching by table lookup rather than a long if/else chain.
func buildRegistry() *Registry {
	r := NewRegistry()

	r.Register(&Command{Name: "PASS", MinParams: 1, Handler: handlePass})
	r.Register(&Command{Name: "NICK", MinParams: 0, Handler: handleNick})
	r.Register(&Command{Name: "USER", MinParams: 4, Handler: handleUser})
	r.Register(&Command{Name: "PING", MinParams: 0, Handler: handlePing})
	r.Register(&Command{Name: "PONG", MinParams: 0, Handler: handlePong})
	r.Register(&Command{Name: "QUIT", MinParams: 0, Handler: handleQuit})

	r.Register(&Command{Name: "JOIN", RequiresRegistration: true, MinParams: 1, Handler: handleJoin})
	r.Register(&Command{Name: "PART", RequiresRegistration: true, MinParams: 1, Handler: handlePart})
	r.Register(&Command{Name: "TOPIC", RequiresRegistration: true, MinParams: 1, Handler: handleTopic})
	r.Register(&Command{Name: "NAMES", RequiresRegistration: true, MinParams: 0, Handler: handleNames})
	r.Register(&Command{Name: "LIST", RequiresRegistration: true, MinParams: 0, Handler: handleList})
	r.Register(&Command{Name: "INVITE", RequiresRegistration: true, MinParams: 2, Handler: handleInvite})
	r.Register(&Command{Name: "KICK", RequiresRegistration: true, MinParams: 2, Handler: handleKick})
	r.Register(&Command{Name: "MODE", RequiresRegistration: true, MinParams: 1, Handler: handleMode})

	r.Register(&Command{Name: "PRIVMSG", RequiresRegistration: true, MinParams: 0, Handler: handlePrivmsg})
	r.Register(&Command{Name: "NOTICE", RequiresRegistration: true, MinParams: 0, Handler: handleNotice})

	r.Register(&Command{Name: "WHO", RequiresRegistration: true, MinParams: 0, Handler: handleWho})
	r.Register(&Command{Name: "WHOIS", RequiresRegistration: true, MinParams: 1, Handler: handleWhois})
	r.Register(&Command{Name: "OPER", RequiresRegistration: true, MinParams: 2, Handler: handleOper})
	r.Register(&Command{Name: "AWAY", RequiresRegistration: true, MinParams: 0, Handler: handleAway})

	return r
}
