package ircd

import (
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
)

// handlePass implements the PASS command of §4.F.
func handlePass(srv *Server, s *Session, msg ircmsg.Message) {
	if s.state != AwaitingPassword {
		srv.sendNumeric(s, ErrAlreadyRegistered, "You may not reregister")
		return
	}

	if srv.cfg.Password != "" && msg.Params[0] != srv.cfg.Password {
		srv.sendNumeric(s, ErrPasswdMismatch, "Password incorrect")
		srv.disconnect(s, "bad password")
		return
	}

	s.state = PasswordAccepted
}

// handleNick implements the NICK command of §4.F.
func handleNick(srv *Server, s *Session, msg ircmsg.Message) {
	if len(msg.Params) < 1 || msg.Params[0] == "" {
		srv.sendNumeric(s, ErrNoNicknameGiven, "No nickname given")
		return
	}

	nick := msg.Params[0]
	if len(nick) > srv.cfg.MaxNickLength {
		nick = nick[:srv.cfg.MaxNickLength]
	}

	if !isValidNick(nick) {
		srv.sendNumeric(s, ErrErroneousNickname, nick, "Erroneous nickname")
		return
	}

	if existing, ok := srv.findNick(nick); ok && existing != s {
		srv.sendNumeric(s, ErrNicknameInUse, nick, "Nickname is already in use")
		return
	}

	oldNick := s.nick
	wasRegistered := s.IsRegistered()

	srv.registerNick(s, nick)

	if wasRegistered {
		announcement := encodeLine(oldNick+"!~"+s.user+"@"+s.host, "NICK", nick)
		notified := make(map[*Channel]struct{})
		for _, c := range s.channels {
			if _, done := notified[c]; done {
				continue
			}
			notified[c] = struct{}{}
			c.Broadcast(announcement, nil)
		}
		return
	}

	maybeCompleteRegistration(srv, s)
}

// handleUser implements the USER command of §4.F.
func handleUser(srv *Server, s *Session, msg ircmsg.Message) {
	if s.IsRegistered() {
		srv.sendNumeric(s, ErrAlreadyRegistered, "You may not reregister")
		return
	}

	user := msg.Params[0]
	if !isValidUser(user) {
		srv.sendNumeric(s, ErrNeedMoreParams, "USER", "Not enough parameters")
		return
	}

	realName := ""
	if len(msg.Params) >= 4 {
		realName = msg.Params[3]
	}

	s.user = user
	s.realName = realName

	maybeCompleteRegistration(srv, s)
}

// maybeCompleteRegistration moves a session to Registered once it has both
// a nick and a USER, and sends the RPL_WELCOME sequence of §4.F/§9.
func maybeCompleteRegistration(srv *Server, s *Session) {
	if s.IsRegistered() || s.nick == "" || s.user == "" {
		return
	}
	if srv.cfg.Password != "" && s.state != PasswordAccepted {
		return
	}

	s.state = Registered

	srv.sendNumeric(s, RplWelcome, "Welcome to the Internet Relay Network "+s.nickUserHost())
	srv.sendNumeric(s, RplYourHost, "Your host is "+srv.cfg.ServerName+", running version "+srv.cfg.Version)
	srv.sendNumeric(s, RplCreated, "This server was created "+srv.cfg.CreatedDate)
	srv.sendNumeric(s, RplMyInfo, srv.cfg.ServerName, srv.cfg.Version, "o", "itkol")

	sendLuserReplies(srv, s)
	sendMOTD(srv, s)
}

// sendLuserReplies always sends the full 251/252/253/254/255 block,
// regardless of whether any opers or channels currently exist — real
// servers send zero counts rather than omitting the reply; see
// DESIGN.md's resolution of this Open Question.
func sendLuserReplies(srv *Server, s *Session) {
	srv.sendNumeric(s, RplLuserClient,
		formatCount(srv.sessionCount())+" users and 0 invisible on 1 server")
	srv.sendNumeric(s, RplLuserOp, formatCount(srv.operatorCount()), "operator(s) online")
	srv.sendNumeric(s, RplLuserUnknown, formatCount(srv.unknownConnectionCount()), "unknown connection(s)")
	srv.sendNumeric(s, RplLuserChannels, formatCount(srv.channelCount()), "channels formed")
	srv.sendNumeric(s, RplLuserMe, "I have "+formatCount(srv.sessionCount())+" clients and 1 server")
}

func sendMOTD(srv *Server, s *Session) {
	srv.sendNumeric(s, RplMotdStart, "- "+srv.cfg.ServerName+" Message of the day -")
	for _, line := range strings.Split(srv.cfg.MOTD, "\n") {
		srv.sendNumeric(s, RplMotd, "- "+line)
	}
	srv.sendNumeric(s, RplEndOfMotd, "End of /MOTD command")
}

func formatCount(n int) string {
	if n == 0 {
		return "0"
	}
	var b strings.Builder
	digits := []byte{}
	for n > 0 {
		digits = append(digits, byte('0'+n%10))
		n /= 10
	}
	for i := len(digits) - 1; i >= 0; i-- {
		b.WriteByte(digits[i])
	}
	return b.String()
}

// handlePing implements the PING command of §4.F: reply with PONG echoing
// whatever token the client sent.
func handlePing(srv *Server, s *Session, msg ircmsg.Message) {
	token := srv.cfg.ServerName
	if len(msg.Params) > 0 {
		token = msg.Params[0]
	}
	s.Enqueue(encodeLine(srv.prefix(), "PONG", srv.cfg.ServerName, token))
}

// handlePong implements the PONG command: it only needs to refresh the
// session's liveness clock, which handleReadable already did before
// dispatch, so there's nothing further to do.
func handlePong(srv *Server, s *Session, msg ircmsg.Message) {}

// handleQuit implements the QUIT command of §4.F.
func handleQuit(srv *Server, s *Session, msg ircmsg.Message) {
	reason := "Client Quit"
	if len(msg.Params) > 0 && msg.Params[0] != "" {
		reason = msg.Params[0]
	}
	s.Enqueue(encodeLine(s.nickUserHost(), "ERROR", "Closing Link: "+s.displayNick()+" ("+reason+")"))
	srv.disconnect(s, reason)
}
