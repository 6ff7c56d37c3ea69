package ircd

import (
	"strings"
	"time"

	"github.com/ergochat/irc-go/ircmsg"
)

// handleWho implements WHO, supplemented from original_source behavior to
// accept a nick as well as a channel mask (§9).
func handleWho(srv *Server, s *Session, msg ircmsg.Message) {
	mask := "*"
	if len(msg.Params) > 0 && msg.Params[0] != "" {
		mask = msg.Params[0]
	}

	if c, ok := srv.findChannel(mask); ok {
		for _, m := range c.Members() {
			sendWhoReply(srv, s, c.Name, m)
		}
		srv.sendNumeric(s, RplEndOfWho, mask, "End of /WHO list")
		return
	}

	if target, ok := srv.findNick(mask); ok {
		sendWhoReply(srv, s, "*", target)
		srv.sendNumeric(s, RplEndOfWho, mask, "End of /WHO list")
		return
	}

	if mask == "*" {
		for _, target := range srv.nicks {
			sendWhoReply(srv, s, "*", target)
		}
	}
	srv.sendNumeric(s, RplEndOfWho, mask, "End of /WHO list")
}

func sendWhoReply(srv *Server, s *Session, channel string, target *Session) {
	flags := "H"
	if target.away {
		flags = "G"
	}
	if target.isOperator() {
		flags += "*"
	}
	srv.sendNumeric(s, RplWhoReply,
		channel, "~"+target.user, target.host, srv.cfg.ServerName, target.nick,
		flags, "0 "+target.realName)
}

// handleWhois implements WHOIS of §4.F.
func handleWhois(srv *Server, s *Session, msg ircmsg.Message) {
	nick := msg.Params[0]
	target, ok := srv.findNick(nick)
	if !ok {
		srv.sendNumeric(s, ErrNoSuchNick, nick, "No such nick/channel")
		srv.sendNumeric(s, RplEndOfWhois, nick, "End of /WHOIS list")
		return
	}

	srv.sendNumeric(s, RplWhoisUser, target.nick, "~"+target.user, target.host, "*", target.realName)
	srv.sendNumeric(s, RplWhoisServer, target.nick, srv.cfg.ServerName, srv.cfg.ServerInfo)

	if target.away {
		srv.sendNumeric(s, RplAway, target.nick, target.awayMsg)
	}
	if target.isOperator() {
		srv.sendNumeric(s, RplWhoisOperator, target.nick, "is an IRC operator")
	}

	var channels []string
	for _, c := range target.channels {
		channels = append(channels, c.MemberNamesReply(target))
	}
	if len(channels) > 0 {
		srv.sendNumeric(s, RplWhoisChannels, target.nick, joinList(channels, " "))
	}

	idle := int(time.Since(target.lastActivity).Seconds())
	srv.sendNumeric(s, RplWhoisIdle, target.nick, formatCount(idle), "seconds idle")
	srv.sendNumeric(s, RplEndOfWhois, target.nick, "End of /WHOIS list")
}

// handleOper implements OPER of §4.F.
func handleOper(srv *Server, s *Session, msg ircmsg.Message) {
	name := msg.Params[0]
	pass := msg.Params[1]

	want, ok := srv.cfg.Opers[name]
	if !ok || want != pass {
		srv.sendNumeric(s, ErrPasswdMismatch, "Password incorrect")
		return
	}

	s.operator = true
	srv.sendNumeric(s, RplYoureOper, "You are now an IRC operator")
}

// handleAway implements AWAY of §4.F. An empty argument clears away status.
func handleAway(srv *Server, s *Session, msg ircmsg.Message) {
	if len(msg.Params) == 0 || msg.Params[0] == "" {
		s.away = false
		s.awayMsg = ""
		srv.sendNumeric(s, RplUnAway, "You are no longer marked as being away")
		return
	}

	s.away = true
	s.awayMsg = msg.Params[0]
	srv.sendNumeric(s, RplNowAway, "You have been marked as being away")
}

// handleUserMode implements the user-mode form of MODE from §4.F: the
// only flag catboxd tracks per-user is the operator bit, which MODE can
// only clear (OPER is the only way to set it), matching RFC 1459's +o
// semantics for user modes.
func handleUserMode(srv *Server, s *Session, msg ircmsg.Message) {
	nick := msg.Params[0]
	if !strings.EqualFold(nick, s.nick) {
		srv.sendNumeric(s, ErrUsersDontMatch, "Cannot change mode for other users")
		return
	}

	if len(msg.Params) == 1 {
		srv.sendNumeric(s, RplUModeIs, userModeString(s))
		return
	}

	change := msg.Params[1]
	adding := true
	for _, ch := range change {
		switch ch {
		case '+':
			adding = true
		case '-':
			adding = false
		case 'o':
			if adding {
				srv.sendNumeric(s, ErrUModeUnknownFlag, "Unknown MODE flag")
			} else {
				s.operator = false
			}
		default:
			srv.sendNumeric(s, ErrUModeUnknownFlag, "Unknown MODE flag")
		}
	}
}

func userModeString(s *Session) string {
	if s.operator {
		return "+o"
	}
	return "+"
}
