package ircd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFramerSplitsOnAllTerminators(t *testing.T) {
	f := NewFramer()

	lines := f.Feed([]byte("NICK alice\r\nUSER a a a :A\nPING x\r"))
	assert.Equal(t, []string{"NICK alice", "USER a a a :A", "PING x"}, lines)
}

func TestFramerBuffersAcrossFeeds(t *testing.T) {
	f := NewFramer()

	assert.Empty(t, f.Feed([]byte("NICK al")))
	lines := f.Feed([]byte("ice\r\n"))
	assert.Equal(t, []string{"NICK alice"}, lines)
}

func TestFramerDropsEmptyLines(t *testing.T) {
	f := NewFramer()
	lines := f.Feed([]byte("\r\n\r\nPING x\r\n"))
	assert.Equal(t, []string{"PING x"}, lines)
}

func TestFramerTruncatesOverLongLines(t *testing.T) {
	f := NewFramer()

	long := strings.Repeat("a", 600)
	lines := f.Feed([]byte(long + "\r\nNICK bob\r\n"))

	assert.Len(t, lines, 2)
	assert.Len(t, lines[0], maxLinePayload)
	assert.Equal(t, "NICK bob", lines[1])
}
