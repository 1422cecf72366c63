package playlist

import (
	"bufio"
	"io"
	"strings"
)

const maxLineSize = 1 << 20 // 1 MiB per line

// Parse scans one source's raw text into a Sequence. It is a single forward
// pass with two states: idle and in-channel. Blank lines are dropped first, so
// any line-ending convention works. Malformed lines never fail the parse; they
// only reset the channel context, which keeps stray URLs from attaching to the
// wrong channel. The only possible error is a read error from r.
func Parse(r io.Reader) (*Sequence, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, maxLineSize)

	seq := NewSequence()
	var current *Channel // nil = idle

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, HeaderPrefix):
			// Only the first header of this source counts; state unchanged.
			if seq.Header == "" {
				seq.Header = line
			}
		case strings.HasPrefix(line, ExtinfPrefix):
			name := DisplayName(line)
			if name == "" {
				// No display name: the channel and any URLs that follow are dropped.
				current = nil
				continue
			}
			ch, ok := seq.ByName[name]
			if !ok {
				ch = NewChannel(name, line)
				seq.ByName[name] = ch
				seq.Order = append(seq.Order, name)
			} else {
				// Repeated name within one source: newest metadata wins,
				// position and URL set stay put.
				ch.Extinf = line
			}
			current = ch
		case IsStreamURL(line):
			if current != nil {
				current.AddURL(line)
			}
		default:
			// Foreign line: back to idle so following URLs aren't misattributed.
			current = nil
		}
	}
	return seq, sc.Err()
}

// ParseString parses text. It cannot fail: strings never produce read errors
// and malformed content degrades instead of erroring.
func ParseString(text string) *Sequence {
	seq, _ := Parse(strings.NewReader(text))
	return seq
}

// DisplayName extracts the channel name from an EXTINF line: the substring
// after the last comma, trimmed. Returns "" when no comma is present.
func DisplayName(extinf string) string {
	i := strings.LastIndex(extinf, ",")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(extinf[i+1:])
}

// IsStreamURL reports whether line is a stream reference.
func IsStreamURL(line string) bool {
	return strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://")
}
