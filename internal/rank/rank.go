// Package rank orders a channel's stream URLs by quality keywords, so that
// serializers and the serve endpoint can put the best feed first. Keywords are
// matched case-insensitively as substrings; earlier keywords outrank later
// ones, and URLs matching no keyword sink to the bottom in lexical order.
package rank

import (
	"sort"
	"strings"

	"github.com/m3umerge/m3u-merge/internal/playlist"
)

// Ranker scores URLs against an ordered keyword list, best first.
type Ranker struct {
	keywords []string
}

// New returns a Ranker for keywords (best quality first). Keywords are
// normalised to lower case; blanks are dropped.
func New(keywords []string) *Ranker {
	ks := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			ks = append(ks, k)
		}
	}
	return &Ranker{keywords: ks}
}

// Score returns the rank of url: the index of the first keyword it contains,
// or len(keywords) when none match. Lower is better.
func (r *Ranker) Score(url string) int {
	lower := strings.ToLower(url)
	for i, k := range r.keywords {
		if strings.Contains(lower, k) {
			return i
		}
	}
	return len(r.keywords)
}

// Sort orders urls in place by score, lexical within equal scores. The lexical
// tiebreak keeps output deterministic.
func (r *Ranker) Sort(urls []string) {
	sort.Slice(urls, func(i, j int) bool {
		si, sj := r.Score(urls[i]), r.Score(urls[j])
		if si != sj {
			return si < sj
		}
		return urls[i] < urls[j]
	})
}

// URLs returns ch's URL set ordered best-first.
func (r *Ranker) URLs(ch *playlist.Channel) []string {
	urls := ch.SortedURLs()
	r.Sort(urls)
	return urls
}

// Best returns ch's highest-ranked URL, or "" when the channel has none.
func (r *Ranker) Best(ch *playlist.Channel) string {
	urls := r.URLs(ch)
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}
