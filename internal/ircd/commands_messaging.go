package ircd

import "github.com/ergochat/irc-go/ircmsg"

// handlePrivmsg implements PRIVMSG, and handleNotice implements NOTICE, per
// §4.F. The two commands differ only in that NOTICE never generates an
// error reply back to the sender (per RFC 1459 §4.4.2), so they share one
// implementation parameterized on notice.
func handlePrivmsg(srv *Server, s *Session, msg ircmsg.Message) {
	deliverMessage(srv, s, msg, "PRIVMSG", false)
}

func handleNotice(srv *Server, s *Session, msg ircmsg.Message) {
	deliverMessage(srv, s, msg, "NOTICE", true)
}

func deliverMessage(srv *Server, s *Session, msg ircmsg.Message, command string, notice bool) {
	if len(msg.Params) < 1 || msg.Params[0] == "" {
		if !notice {
			srv.sendNumeric(s, ErrNoRecipient, "No recipient given ("+command+")")
		}
		return
	}
	if len(msg.Params) < 2 || msg.Params[1] == "" {
		if !notice {
			srv.sendNumeric(s, ErrNoTextToSend, "No text to send")
		}
		return
	}

	target := msg.Params[0]
	text := msg.Params[1]
	line := encodeLine(s.nickUserHost(), command, target, text)

	if len(target) > 0 && (target[0] == '#' || target[0] == '&') {
		c, ok := srv.findChannel(target)
		if !ok {
			if !notice {
				srv.sendNumeric(s, ErrNoSuchChannel, target, "No such channel")
			}
			return
		}
		if !c.HasMember(s) {
			if !notice {
				srv.sendNumeric(s, ErrNotOnChannel, target, "You're not on that channel")
			}
			return
		}
		c.Broadcast(line, s)
		return
	}

	recipient, ok := srv.findNick(target)
	if !ok {
		if !notice {
			srv.sendNumeric(s, ErrNoSuchNick, target, "No such nick/channel")
		}
		return
	}

	recipient.Enqueue(line)

	if !notice && recipient.away {
		srv.sendNumeric(s, RplAway, recipient.nick, recipient.awayMsg)
	}
}
