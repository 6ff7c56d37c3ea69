package ircd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLineBasic(t *testing.T) {
	msg, ok := ParseLine("NICK alice")
	assert.True(t, ok)
	assert.Equal(t, "NICK", msg.Command)
	assert.Equal(t, []string{"alice"}, msg.Params)
}

func TestParseLineWithPrefixAndTrailing(t *testing.T) {
	msg, ok := ParseLine(":alice!~a@host PRIVMSG #chan :hello there friend")
	assert.True(t, ok)
	assert.Equal(t, "alice!~a@host", msg.Source)
	assert.Equal(t, "PRIVMSG", msg.Command)
	assert.Equal(t, []string{"#chan", "hello there friend"}, msg.Params)
}

func TestParseLineEmptyIsRejected(t *testing.T) {
	_, ok := ParseLine("")
	assert.False(t, ok)
}

func TestParseLeniently(t *testing.T) {
	msg, ok := parseLeniently("join #chan :key arg")
	assert.True(t, ok)
	assert.Equal(t, "JOIN", msg.Command)
	assert.Equal(t, []string{"#chan", "key arg"}, msg.Params)
}

func TestParseLenientlyRejectsBlank(t *testing.T) {
	_, ok := parseLeniently("   ")
	assert.False(t, ok)
}

func TestEncodeLineTrailingHeuristic(t *testing.T) {
	line := encodeLine("server.example", "372", "alice", "- line with spaces")
	assert.Equal(t, ":server.example 372 alice :- line with spaces\r\n", line)
}

func TestEncodeLineNoTrailingNeeded(t *testing.T) {
	line := encodeLine("server.example", "JOIN", "#chan")
	assert.Equal(t, ":server.example JOIN #chan\r\n", line)
}
