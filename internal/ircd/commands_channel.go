package ircd

import (
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
)

// handleJoin implements the JOIN command of §4.D/§4.F.
func handleJoin(srv *Server, s *Session, msg ircmsg.Message) {
	names := strings.Split(msg.Params[0], ",")

	var keys []string
	if len(msg.Params) > 1 {
		keys = strings.Split(msg.Params[1], ",")
	}

	for i, name := range names {
		key := ""
		if i < len(keys) {
			key = keys[i]
		}
		joinOne(srv, s, name, key)
	}
}

func joinOne(srv *Server, s *Session, name, key string) {
	if !isValidChannel(name) {
		srv.sendNumeric(s, ErrNoSuchChannel, name, "No such channel")
		return
	}

	c, created := srv.getOrCreateChannel(name)

	if c.HasMember(s) {
		return
	}

	if !created {
		if ok, reason := c.CanJoin(s, key); !ok {
			switch reason {
			case JoinInviteOnlyBlocked:
				srv.sendNumeric(s, ErrInviteOnlyChan, c.Name, "Cannot join channel (+i)")
			case JoinBadKey:
				srv.sendNumeric(s, ErrBadChannelKey, c.Name, "Cannot join channel (+k)")
			case JoinFull:
				srv.sendNumeric(s, ErrChannelIsFull, c.Name, "Cannot join channel (+l)")
			}
			return
		}
	}

	c.Add(s, created)
	c.RemoveInvite(s.nick)

	joinLine := encodeLine(s.nickUserHost(), "JOIN", c.Name)
	c.Broadcast(joinLine, nil)

	sendTopic(srv, s, c)
	sendNames(srv, s, c)
}

// handlePart implements the PART command of §4.D/§4.F.
func handlePart(srv *Server, s *Session, msg ircmsg.Message) {
	reason := s.nick
	if len(msg.Params) > 1 {
		reason = msg.Params[1]
	}

	for _, name := range strings.Split(msg.Params[0], ",") {
		c, ok := srv.findChannel(name)
		if !ok {
			srv.sendNumeric(s, ErrNoSuchChannel, name, "No such channel")
			continue
		}
		if !c.HasMember(s) {
			srv.sendNumeric(s, ErrNotOnChannel, c.Name, "You're not on that channel")
			continue
		}

		partLine := encodeLine(s.nickUserHost(), "PART", c.Name, reason)
		c.Broadcast(partLine, nil)
		c.Remove(s)
		if c.IsEmpty() {
			delete(srv.channels, canonicalizeChannel(c.Name))
		}
	}
}

// handleTopic implements the TOPIC command of §4.D/§4.F.
func handleTopic(srv *Server, s *Session, msg ircmsg.Message) {
	c, ok := srv.findChannel(msg.Params[0])
	if !ok {
		srv.sendNumeric(s, ErrNoSuchChannel, msg.Params[0], "No such channel")
		return
	}

	if len(msg.Params) == 1 {
		sendTopic(srv, s, c)
		return
	}

	if !c.HasMember(s) {
		srv.sendNumeric(s, ErrNotOnChannel, c.Name, "You're not on that channel")
		return
	}

	if !c.CanChangeTopic(s) {
		srv.sendNumeric(s, ErrChanOpPrivsNeeded, c.Name, "You're not channel operator")
		return
	}

	c.Topic = msg.Params[1]
	line := encodeLine(s.nickUserHost(), "TOPIC", c.Name, c.Topic)
	c.Broadcast(line, nil)
}

func sendTopic(srv *Server, s *Session, c *Channel) {
	if c.Topic == "" {
		srv.sendNumeric(s, RplNoTopic, c.Name, "No topic is set")
		return
	}
	srv.sendNumeric(s, RplTopic, c.Name, c.Topic)
}

func sendNames(srv *Server, s *Session, c *Channel) {
	var entries []string
	for _, m := range c.Members() {
		entries = append(entries, c.MemberNamesReply(m))
	}
	srv.sendNumeric(s, RplNamReply, "=", c.Name, joinList(entries, " "))
	srv.sendNumeric(s, RplEndOfNames, c.Name, "End of /NAMES list")
}

// handleNames implements the NAMES command of §4.F.
func handleNames(srv *Server, s *Session, msg ircmsg.Message) {
	if len(msg.Params) == 0 {
		for _, c := range srv.channels {
			sendNames(srv, s, c)
		}
		return
	}
	for _, name := range strings.Split(msg.Params[0], ",") {
		if c, ok := srv.findChannel(name); ok {
			sendNames(srv, s, c)
		}
	}
}

// handleList implements the LIST command, supplemented from
// original_source behavior to accept an optional channel filter (§9).
func handleList(srv *Server, s *Session, msg ircmsg.Message) {
	srv.sendNumeric(s, RplListStart, "Channel", "Users Name")

	var wanted map[string]struct{}
	if len(msg.Params) > 0 && msg.Params[0] != "" {
		wanted = make(map[string]struct{})
		for _, name := range strings.Split(msg.Params[0], ",") {
			wanted[canonicalizeChannel(name)] = struct{}{}
		}
	}

	for key, c := range srv.channels {
		if wanted != nil {
			if _, ok := wanted[key]; !ok {
				continue
			}
		}
		srv.sendNumeric(s, RplList, c.Name, formatCount(len(c.Members())), c.Topic)
	}
	srv.sendNumeric(s, RplListEnd, "End of /LIST")
}

// handleInvite implements the INVITE command of §4.D/§4.F.
func handleInvite(srv *Server, s *Session, msg ircmsg.Message) {
	nick := msg.Params[0]
	channelName := msg.Params[1]

	target, ok := srv.findNick(nick)
	if !ok {
		srv.sendNumeric(s, ErrNoSuchNick, nick, "No such nick/channel")
		return
	}

	c, ok := srv.findChannel(channelName)
	if ok {
		if !c.HasMember(s) {
			srv.sendNumeric(s, ErrNotOnChannel, c.Name, "You're not on that channel")
			return
		}
		if c.HasMode(ModeInviteOnly) && !c.IsOp(s) {
			srv.sendNumeric(s, ErrChanOpPrivsNeeded, c.Name, "You're not channel operator")
			return
		}
		if c.HasMember(target) {
			return
		}
		c.Invite(nick)
	}

	srv.sendNumeric(s, RplInviting, channelName, nick)
	target.Enqueue(encodeLine(s.nickUserHost(), "INVITE", target.nick, channelName))
}

// handleKick implements the KICK command of §4.D/§4.F.
func handleKick(srv *Server, s *Session, msg ircmsg.Message) {
	c, ok := srv.findChannel(msg.Params[0])
	if !ok {
		srv.sendNumeric(s, ErrNoSuchChannel, msg.Params[0], "No such channel")
		return
	}

	if !c.HasMember(s) {
		srv.sendNumeric(s, ErrNotOnChannel, c.Name, "You're not on that channel")
		return
	}
	if !c.IsOp(s) {
		srv.sendNumeric(s, ErrChanOpPrivsNeeded, c.Name, "You're not channel operator")
		return
	}

	targetNick := msg.Params[1]
	target, ok := srv.findNick(targetNick)
	if !ok || !c.HasMember(target) {
		srv.sendNumeric(s, ErrUserNotInChannel, targetNick, c.Name, "They aren't on that channel")
		return
	}

	reason := s.nick
	if len(msg.Params) > 2 {
		reason = msg.Params[2]
	}

	line := encodeLine(s.nickUserHost(), "KICK", c.Name, targetNick, reason)
	c.Broadcast(line, nil)
	c.Remove(target)
	if c.IsEmpty() {
		delete(srv.channels, canonicalizeChannel(c.Name))
	}
}

// handleChannelMode implements the channel-mode form of MODE from §4.D/§4.F:
// +/-itkol and +/-o, +/-v.
func handleChannelMode(srv *Server, s *Session, msg ircmsg.Message) {
	c, ok := srv.findChannel(msg.Params[0])
	if !ok {
		srv.sendNumeric(s, ErrNoSuchChannel, msg.Params[0], "No such channel")
		return
	}

	if len(msg.Params) == 1 {
		srv.sendNumeric(s, RplChannelModeIs, c.Name, c.ModeString())
		return
	}

	if !c.HasMember(s) {
		srv.sendNumeric(s, ErrNotOnChannel, c.Name, "You're not on that channel")
		return
	}
	if !c.IsOp(s) {
		srv.sendNumeric(s, ErrChanOpPrivsNeeded, c.Name, "You're not channel operator")
		return
	}

	modeArgs := msg.Params[2:]
	argIdx := 0
	nextArg := func() string {
		if argIdx < len(modeArgs) {
			v := modeArgs[argIdx]
			argIdx++
			return v
		}
		return ""
	}

	var applied strings.Builder
	var applyArgs []string
	adding := true

	for _, ch := range msg.Params[1] {
		switch ch {
		case '+':
			adding = true
		case '-':
			adding = false
		case 'i':
			if c.SetMode(ModeInviteOnly, adding) {
				writeModeChange(&applied, adding, 'i')
			}
		case 't':
			if c.SetMode(ModeTopicLocked, adding) {
				writeModeChange(&applied, adding, 't')
			}
		case 'k':
			arg := nextArg()
			if adding {
				if arg == "" {
					continue
				}
				c.SetKey(arg)
				c.SetMode(ModeHasKey, true)
				writeModeChange(&applied, adding, 'k')
				applyArgs = append(applyArgs, arg)
			} else {
				c.SetKey("")
				c.SetMode(ModeHasKey, false)
				writeModeChange(&applied, adding, 'k')
			}
		case 'l':
			if adding {
				arg := nextArg()
				limit := parseNonNegative(arg)
				if limit <= 0 {
					continue
				}
				c.SetLimit(limit)
				c.SetMode(ModeHasUserLimit, true)
				writeModeChange(&applied, adding, 'l')
				applyArgs = append(applyArgs, arg)
			} else {
				c.SetMode(ModeHasUserLimit, false)
				writeModeChange(&applied, adding, 'l')
			}
		case 'o', 'v':
			nick := nextArg()
			target, ok := srv.findNick(nick)
			if !ok {
				srv.sendNumeric(s, ErrNoSuchNick, nick, "No such nick/channel")
				continue
			}
			if !c.HasMember(target) {
				srv.sendNumeric(s, ErrUserNotInChannel, nick, c.Name, "They aren't on that channel")
				continue
			}
			if ch == 'o' {
				c.SetOp(target, adding)
			} else {
				c.SetVoice(target, adding)
			}
			writeModeChange(&applied, adding, ch)
			applyArgs = append(applyArgs, nick)
		default:
			srv.sendNumeric(s, ErrUnknownMode, string(ch), "is unknown mode char to me")
		}
	}

	if applied.Len() == 0 {
		return
	}

	params := append([]string{c.Name, applied.String()}, applyArgs...)
	line := encodeLine(s.nickUserHost(), "MODE", params...)
	c.Broadcast(line, nil)
}

// writeModeChange appends ch to b, prefixing it with a sign character
// whenever b is empty or the polarity just flipped from the last char
// written, so a run like "+i-k+o" collapses to one sign per polarity run.
func writeModeChange(b *strings.Builder, adding bool, ch rune) {
	want := byte('-')
	if adding {
		want = '+'
	}
	if b.Len() == 0 || lastSign(b.String()) != want {
		b.WriteByte(want)
	}
	b.WriteRune(ch)
}

func lastSign(s string) byte {
	sign := byte('+')
	for i := 0; i < len(s); i++ {
		if s[i] == '+' || s[i] == '-' {
			sign = s[i]
		}
	}
	return sign
}

func parseNonNegative(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return -1
		}
		n = n*10 + int(s[i]-'0')
	}
	if s == "" {
		return -1
	}
	return n
}
