// Package playlist holds the parsed form of an extended-M3U channel list:
// an ordered run of named channels, each carrying its most recent #EXTINF
// metadata line and a deduplicated set of stream URLs. The display name after
// the last comma of the #EXTINF line is the channel's identity; two sources
// that spell a name identically (case-sensitive, whitespace-trimmed) are
// talking about the same channel.
package playlist

import (
	"io"
	"sort"
	"strings"
)

const (
	// HeaderPrefix marks the playlist header line.
	HeaderPrefix = "#EXTM3U"
	// ExtinfPrefix marks a channel metadata line.
	ExtinfPrefix = "#EXTINF:"
)

// Channel is one logical channel keyed by its display name.
type Channel struct {
	Name   string              // dedup key: text after the last comma of the EXTINF line, trimmed
	Extinf string              // full metadata line; the latest one seen wins
	URLs   map[string]struct{} // stream URLs; append-only, exact string dedup
}

// NewChannel returns a Channel with an empty URL set.
func NewChannel(name, extinf string) *Channel {
	return &Channel{Name: name, Extinf: extinf, URLs: make(map[string]struct{})}
}

// AddURL adds u to the channel's URL set. Duplicates collapse.
func (c *Channel) AddURL(u string) {
	c.URLs[u] = struct{}{}
}

// MergeURLs unions other's URL set into c. Nothing is ever removed.
func (c *Channel) MergeURLs(other *Channel) {
	for u := range other.URLs {
		c.URLs[u] = struct{}{}
	}
}

// SortedURLs returns the channel's URLs in lexical order, so output does not
// depend on map iteration order.
func (c *Channel) SortedURLs() []string {
	urls := make([]string, 0, len(c.URLs))
	for u := range c.URLs {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// Sequence is an ordered collection of channels plus the playlist header.
// Order holds identities in their final relative position; it is only ever
// mutated by positional insertion, never re-sorted by the merge path.
type Sequence struct {
	Header string
	Order  []string
	ByName map[string]*Channel
}

// NewSequence returns an empty accumulator.
func NewSequence() *Sequence {
	return &Sequence{ByName: make(map[string]*Channel)}
}

// Len returns the number of distinct channels.
func (s *Sequence) Len() int { return len(s.Order) }

// Channels returns the channel records in sequence order.
func (s *Sequence) Channels() []*Channel {
	out := make([]*Channel, 0, len(s.Order))
	for _, name := range s.Order {
		if ch, ok := s.ByName[name]; ok {
			out = append(out, ch)
		}
	}
	return out
}

// IndexOf returns the current position of name in Order, or -1.
func (s *Sequence) IndexOf(name string) int {
	for i, n := range s.Order {
		if n == name {
			return i
		}
	}
	return -1
}

// InsertAt inserts name into Order at position i (clamped to the valid range)
// and records ch under that name.
func (s *Sequence) InsertAt(i int, name string, ch *Channel) {
	if i < 0 {
		i = 0
	}
	if i > len(s.Order) {
		i = len(s.Order)
	}
	s.Order = append(s.Order, "")
	copy(s.Order[i+1:], s.Order[i:])
	s.Order[i] = name
	s.ByName[name] = ch
}

// Encode serializes the sequence: header (when present), then for each channel
// in order its metadata line followed by its URLs in lexical order.
func (s *Sequence) Encode() string {
	return s.EncodeWith(nil)
}

// EncodeWith is Encode with a custom per-channel URL ordering. A nil urlOrder
// falls back to lexical order.
func (s *Sequence) EncodeWith(urlOrder func(*Channel) []string) string {
	var b strings.Builder
	if s.Header != "" {
		b.WriteString(s.Header)
		b.WriteByte('\n')
	}
	for _, ch := range s.Channels() {
		b.WriteString(ch.Extinf)
		b.WriteByte('\n')
		urls := ch.SortedURLs()
		if urlOrder != nil {
			urls = urlOrder(ch)
		}
		for _, u := range urls {
			b.WriteString(u)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// WriteTo writes the encoded sequence to w.
func (s *Sequence) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.Encode())
	return int64(n), err
}
