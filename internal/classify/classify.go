// Package classify rearranges a merged sequence into broadcaster buckets, for
// playlists whose sources scatter related channels across arbitrary groups:
// nationally numbered channels (CCTV) sorted by channel number, regional
// satellite channels (卫视) in first-seen order, and everything else grouped by
// its original group-title. Bucket membership is decided from the display
// name; the group-title attribute is rewritten to the bucket label on the way
// out.
package classify

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/m3umerge/m3u-merge/internal/playlist"
)

// Labels are the group-title values written per bucket.
type Labels struct {
	Numbered string `yaml:"numbered"` // default 央视
	Regional string `yaml:"regional"` // default 卫视
	Fallback string `yaml:"fallback"` // default 其他, used when a channel has no group
}

func (l Labels) withDefaults() Labels {
	if l.Numbered == "" {
		l.Numbered = "央视"
	}
	if l.Regional == "" {
		l.Regional = "卫视"
	}
	if l.Fallback == "" {
		l.Fallback = "其他"
	}
	return l
}

var numberedRe = regexp.MustCompile(`(?i)CCTV-?(\d+)`)

// unnumbered sorts numbered-bucket channels without a digit after everything else.
const unnumbered = 999

// NormKey normalises a display name for duplicate collapsing: dashes removed,
// a trailing 台 stripped, upper-cased. "CCTV-1" and "cctv1" collapse together.
func NormKey(name string) string {
	k := strings.ReplaceAll(name, "-", "")
	k = strings.TrimSuffix(k, "台")
	return strings.ToUpper(strings.TrimSpace(k))
}

// Preferred reports whether name is the nicer display form: broadcasters
// conventionally write a dash (CCTV-1) or a trailing 台.
func Preferred(name string) bool {
	return strings.Contains(name, "-") || strings.HasSuffix(name, "台")
}

// ChannelNumber extracts the numeric suffix of a numbered channel name, or
// unnumbered when the name carries no digit.
func ChannelNumber(name string) int {
	m := numberedRe.FindStringSubmatch(name)
	if len(m) < 2 {
		return unnumbered
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return unnumbered
	}
	return n
}

// Collapse merges channels whose names normalise to the same key. The first
// occurrence keeps its position and absorbs the URLs of the rest; the
// preferred display form wins the metadata line.
func Collapse(seq *playlist.Sequence) {
	owners := make(map[string]*playlist.Channel, len(seq.Order))
	order := make([]string, 0, len(seq.Order))
	for _, name := range seq.Order {
		ch, ok := seq.ByName[name]
		if !ok {
			continue
		}
		key := NormKey(ch.Name)
		if own, seen := owners[key]; seen {
			own.MergeURLs(ch)
			if Preferred(ch.Name) && !Preferred(own.Name) {
				own.Extinf = ch.Extinf
				own.Name = ch.Name
			}
			delete(seq.ByName, name)
			continue
		}
		owners[key] = ch
		order = append(order, name)
	}
	seq.Order = order
}

type entry struct {
	name  string
	ch    *playlist.Channel
	idx   int // position before arranging; ties inside buckets keep it
	group string
}

// Arrange reorders seq into numbered / regional / fallback buckets and
// rewrites each channel's group-title to its bucket label. Call Collapse first
// when sources mix "CCTV1" and "CCTV-1" spellings.
func Arrange(seq *playlist.Sequence, labels Labels) {
	labels = labels.withDefaults()

	var numbered, regional, other []entry
	for i, name := range seq.Order {
		ch, ok := seq.ByName[name]
		if !ok {
			continue
		}
		group := playlist.GroupTitle(ch.Extinf)
		if group == "" {
			group = labels.Fallback
		}
		e := entry{name: name, ch: ch, idx: i, group: group}
		switch {
		case strings.Contains(strings.ToUpper(ch.Name), "CCTV"):
			numbered = append(numbered, e)
		case strings.Contains(ch.Name, "卫视"):
			regional = append(regional, e)
		default:
			other = append(other, e)
		}
	}

	sort.SliceStable(numbered, func(i, j int) bool {
		ni, nj := ChannelNumber(numbered[i].ch.Name), ChannelNumber(numbered[j].ch.Name)
		if ni != nj {
			return ni < nj
		}
		return numbered[i].idx < numbered[j].idx
	})
	// regional keeps first-seen order as-is.
	sort.SliceStable(other, func(i, j int) bool {
		if other[i].group != other[j].group {
			return other[i].group < other[j].group
		}
		return other[i].idx < other[j].idx
	})

	order := make([]string, 0, len(seq.Order))
	relabel := func(es []entry, label func(entry) string) {
		for _, e := range es {
			e.ch.Extinf = playlist.SetGroupTitle(e.ch.Extinf, label(e))
			order = append(order, e.name)
		}
	}
	relabel(numbered, func(entry) string { return labels.Numbered })
	relabel(regional, func(entry) string { return labels.Regional })
	relabel(other, func(e entry) string { return e.group })
	seq.Order = order
}
