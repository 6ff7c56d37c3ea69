package ircd

import (
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
)

// ParseLine parses a single logical line (no terminator) into a Message.
//
// ergochat/irc-go's ParseLine is strict about a handful of edge cases (e.g.
// tag-only lines, certain empty parameters) that real-world clients violate
// constantly. Per spec.md §4.B the parser must never reject a line outright
// — it should yield its best-effort tokens and let the dispatcher decide
// what to do with them. So on a strict parse error we fall back to a
// lenient hand-rolled tokenizer implementing the same prefix/command/params
// grammar RFC 1459 defines.
//
// ok is false only for a blank line or a line with no command token, which
// the caller should silently ignore.
func ParseLine(line string) (msg ircmsg.Message, ok bool) {
	if m, err := ircmsg.ParseLine(line); err == nil {
		if m.Command == "" {
			return ircmsg.Message{}, false
		}
		return m, true
	}

	return parseLeniently(line)
}

// parseLeniently implements the grammar of §4.B directly:
//  1. an optional ":"-prefixed prefix up to the first space
//  2. a command token, upper-cased
//  3. whitespace-delimited params, where a token starting with ":" makes the
//     remainder of the line (including further spaces) the final param
func parseLeniently(line string) (ircmsg.Message, bool) {
	rest := line

	var prefix string
	if strings.HasPrefix(rest, ":") {
		sp := strings.IndexByte(rest, ' ')
		if sp == -1 {
			return ircmsg.Message{}, false
		}
		prefix = rest[1:sp]
		rest = strings.TrimLeft(rest[sp+1:], " ")
	}

	if rest == "" {
		return ircmsg.Message{}, false
	}

	var command string
	var params []string

	sp := strings.IndexByte(rest, ' ')
	if sp == -1 {
		command = rest
		rest = ""
	} else {
		command = rest[:sp]
		rest = strings.TrimLeft(rest[sp+1:], " ")
	}

	if command == "" {
		return ircmsg.Message{}, false
	}

	for rest != "" {
		if strings.HasPrefix(rest, ":") {
			params = append(params, rest[1:])
			rest = ""
			break
		}

		sp := strings.IndexByte(rest, ' ')
		if sp == -1 {
			params = append(params, rest)
			rest = ""
			break
		}

		params = append(params, rest[:sp])
		rest = strings.TrimLeft(rest[sp+1:], " ")
	}

	return ircmsg.Message{
		Source:  prefix,
		Command: strings.ToUpper(command),
		Params:  params,
	}, true
}

// encodeLine builds a wire line (with trailing CRLF) for a message from the
// given prefix, command, and parameters. The last parameter is sent as a
// trailing (":"-prefixed) parameter whenever it is empty or contains a
// space, matching §4.B's trailing-parameter rule.
func encodeLine(prefix, command string, params ...string) string {
	msg := ircmsg.MakeMessage(nil, prefix, command, params...)
	line, err := msg.Line()
	if err != nil {
		// MakeMessage/Line only fail on pathological (too many/too long)
		// parameters; degrade to a best-effort manual join rather than drop the
		// message entirely.
		return manualEncode(prefix, command, params...)
	}
	return line
}

func manualEncode(prefix, command string, params ...string) string {
	var b strings.Builder
	if prefix != "" {
		b.WriteByte(':')
		b.WriteString(prefix)
		b.WriteByte(' ')
	}
	b.WriteString(command)
	for i, p := range params {
		b.WriteByte(' ')
		last := i == len(params)-1
		if last && (p == "" || strings.Contains(p, " ") || strings.HasPrefix(p, ":")) {
			b.WriteByte(':')
		}
		b.WriteString(p)
	}
	b.WriteString("\r\n")
	return b.String()
}
