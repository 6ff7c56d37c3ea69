package ircd

// maxLineLength is the maximum protocol line length including the
// terminator, per IRC tradition (RFC 1459 section 2.3).
const maxLineLength = 512

// maxLinePayload is the maximum number of bytes we keep from a line once the
// terminator is accounted for.
const maxLinePayload = maxLineLength - 2

// Framer accumulates raw bytes from a single connection and yields complete
// protocol lines. A line is terminated by any of CRLF, LF, or CR; all three
// are tolerated per spec. Lines over maxLinePayload bytes are truncated; the
// excess up to the next terminator is discarded. Empty lines are dropped
// silently. Bytes without a terminator remain buffered for the next Feed.
type Framer struct {
	buf []byte

	// overLong is set once we've seen more than maxLinePayload bytes without a
	// terminator. While set, further incoming bytes are discarded until the
	// terminator arrives; truncated holds the bytes we'll actually emit.
	overLong  bool
	truncated []byte
}

// NewFramer returns an empty Framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Feed appends data to the framer's receive buffer and returns every
// complete line found, in order.
func (f *Framer) Feed(data []byte) []string {
	f.buf = append(f.buf, data...)

	var lines []string

	for {
		idx, termLen := findTerminator(f.buf)
		if idx == -1 {
			if !f.overLong && len(f.buf) > maxLinePayload {
				f.overLong = true
				f.truncated = append([]byte(nil), f.buf[:maxLinePayload]...)
			}
			if f.overLong {
				f.buf = f.buf[:0]
			}
			break
		}

		line := f.buf[:idx]
		rest := f.buf[idx+termLen:]
		// Copy rest out before we keep mutating buf via append elsewhere.
		f.buf = append([]byte(nil), rest...)

		if f.overLong {
			line = f.truncated
			f.truncated = nil
			f.overLong = false
		} else if len(line) > maxLinePayload {
			line = line[:maxLinePayload]
		}

		if len(line) == 0 {
			continue
		}

		lines = append(lines, string(line))
	}

	return lines
}

// findTerminator returns the index of the first terminator byte in buf and
// the number of bytes the terminator itself occupies (1 for lone CR or LF, 2
// for CRLF), or (-1, 0) if no terminator is present yet.
func findTerminator(buf []byte) (int, int) {
	for i, b := range buf {
		if b == '\n' {
			return i, 1
		}
		if b == '\r' {
			if i+1 < len(buf) && buf[i+1] == '\n' {
				return i, 2
			}
			return i, 1
		}
	}
	return -1, 0
}
