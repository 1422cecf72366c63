// Package rename applies conditional relabeling rules to merged channels.
// Rules run after the merge, so identities and positions are already fixed;
// a rule changes how a channel is displayed, never where it sits or how it
// was deduplicated.
package rename

import (
	"strings"

	"github.com/m3umerge/m3u-merge/internal/playlist"
)

// Rule relabels channels whose name or group matches.
type Rule struct {
	// Match is the text to look for. In selects the field it is tested
	// against: "name" (default) or "group". Exact requires a full match
	// instead of a substring.
	Match string `yaml:"match"`
	In    string `yaml:"in"`
	Exact bool   `yaml:"exact"`

	// SetName / SetGroup are applied when the rule matches; empty fields
	// leave the label untouched.
	SetName  string `yaml:"set_name"`
	SetGroup string `yaml:"set_group"`
}

func (r Rule) matches(ch *playlist.Channel) bool {
	subject := ch.Name
	if r.In == "group" {
		subject = playlist.GroupTitle(ch.Extinf)
	}
	if r.Exact {
		return subject == r.Match
	}
	return strings.Contains(subject, r.Match)
}

// Apply runs every rule against every channel, in rule order. Later rules see
// the labels earlier rules produced.
func Apply(seq *playlist.Sequence, rules []Rule) {
	if len(rules) == 0 {
		return
	}
	for _, ch := range seq.Channels() {
		for _, r := range rules {
			if r.Match == "" || !r.matches(ch) {
				continue
			}
			if r.SetName != "" {
				ch.Extinf = playlist.SetDisplayName(ch.Extinf, r.SetName)
				ch.Name = r.SetName
			}
			if r.SetGroup != "" {
				ch.Extinf = playlist.SetGroupTitle(ch.Extinf, r.SetGroup)
			}
		}
	}
}
