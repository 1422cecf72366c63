// Package merge folds ordered channel sequences from several sources into one
// consolidated sequence. Channels shared with an earlier source keep their
// position and absorb the newcomer's metadata and URLs; channels introduced by
// a later source are spliced in next to the channels they appeared beside,
// so each source's local ordering survives the merge.
package merge

import (
	"github.com/m3umerge/m3u-merge/internal/playlist"
)

// Fold merges in into acc and returns acc. The first source must seed acc
// directly (its parse result is the accumulator); Fold is for every source
// after that. Fold takes ownership of in's channel records; in must not be
// reused afterwards. in's header is ignored: only the first source may supply
// the header, even when it had none.
//
// Placement uses an anchor/cursor walk over in's own order: a known channel
// pulls the cursor to its current position in acc, a new channel is inserted
// right after the cursor and becomes the cursor. The cursor starts at -1, so a
// run of new channels lands as a contiguous block after the nearest known
// channel preceding it in the incoming source, and a prefix of new channels
// lands at the very front. There is no global re-scan: the cursor only ever
// moves as the walk encounters channels.
func Fold(acc, in *playlist.Sequence) *playlist.Sequence {
	cursor := -1
	for _, name := range in.Order {
		src := in.ByName[name]
		if dst, ok := acc.ByName[name]; ok {
			// Known channel: latest source wins the metadata line, URLs union.
			dst.Extinf = src.Extinf
			dst.MergeURLs(src)
			// Positions may have shifted from earlier inserts in this fold.
			cursor = acc.IndexOf(name)
			continue
		}
		cursor++
		acc.InsertAt(cursor, name, src)
	}
	return acc
}

// All merges the parsed sequences in order. The first seeds the accumulator;
// an empty input produces an empty sequence.
func All(seqs []*playlist.Sequence) *playlist.Sequence {
	if len(seqs) == 0 {
		return playlist.NewSequence()
	}
	acc := seqs[0]
	for _, seq := range seqs[1:] {
		Fold(acc, seq)
	}
	return acc
}

// MergeAll parses each source text, merges them in order and returns the
// serialized result. It never touches the filesystem.
func MergeAll(texts []string) string {
	seqs := make([]*playlist.Sequence, 0, len(texts))
	for _, t := range texts {
		seqs = append(seqs, playlist.ParseString(t))
	}
	return All(seqs).Encode()
}
