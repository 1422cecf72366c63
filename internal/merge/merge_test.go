package merge

import (
	"reflect"
	"strings"
	"testing"

	"github.com/m3umerge/m3u-merge/internal/playlist"
)

func seqOf(t *testing.T, text string) *playlist.Sequence {
	t.Helper()
	return playlist.ParseString(text)
}

func channels(names ...string) string {
	var b strings.Builder
	for _, n := range names {
		b.WriteString("#EXTINF:-1," + n + "\n")
		b.WriteString("http://stream/" + strings.ReplaceAll(n, " ", "_") + "\n")
	}
	return b.String()
}

func TestFold_singleSourceIdempotent(t *testing.T) {
	text := "#EXTM3U\n" + channels("A", "B", "C")
	got := MergeAll([]string{text})
	want := playlist.ParseString(text).Encode()
	if got != want {
		t.Errorf("single-source merge changed output:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestFold_specScenario(t *testing.T) {
	s1 := seqOf(t, `#EXTM3U
#EXTINF:-1,News
http://u/1
#EXTINF:-1,Sports
http://u/2
`)
	s2 := seqOf(t, `#EXTINF:-1,Sports
http://u/2
http://u/3
#EXTINF:-1,Movies
http://u/4
`)
	acc := All([]*playlist.Sequence{s1, s2})

	if want := []string{"News", "Sports", "Movies"}; !reflect.DeepEqual(acc.Order, want) {
		t.Errorf("order = %v; want %v", acc.Order, want)
	}
	if acc.Header != "#EXTM3U" {
		t.Errorf("header = %q; want #EXTM3U", acc.Header)
	}
	if want := []string{"http://u/2", "http://u/3"}; !reflect.DeepEqual(acc.ByName["Sports"].SortedURLs(), want) {
		t.Errorf("Sports urls = %v; want %v", acc.ByName["Sports"].SortedURLs(), want)
	}
	if want := []string{"http://u/1"}; !reflect.DeepEqual(acc.ByName["News"].SortedURLs(), want) {
		t.Errorf("News urls = %v; want %v", acc.ByName["News"].SortedURLs(), want)
	}
	if want := []string{"http://u/4"}; !reflect.DeepEqual(acc.ByName["Movies"].SortedURLs(), want) {
		t.Errorf("Movies urls = %v; want %v", acc.ByName["Movies"].SortedURLs(), want)
	}
}

func TestFold_frontInsertion(t *testing.T) {
	acc := seqOf(t, channels("B"))
	Fold(acc, seqOf(t, channels("A", "B")))
	if want := []string{"A", "B"}; !reflect.DeepEqual(acc.Order, want) {
		t.Errorf("order = %v; want %v (no anchor before A: insert at front)", acc.Order, want)
	}
}

func TestFold_contiguousBlockInsertion(t *testing.T) {
	acc := seqOf(t, channels("A", "B"))
	Fold(acc, seqOf(t, channels("X", "A", "Y", "Z", "B")))
	if want := []string{"X", "A", "Y", "Z", "B"}; !reflect.DeepEqual(acc.Order, want) {
		t.Errorf("order = %v; want %v", acc.Order, want)
	}
}

func TestFold_newRunAfterShiftedAnchor(t *testing.T) {
	// The anchor B shifts right when X lands in front of A; the run after B
	// must still follow B's current position.
	acc := seqOf(t, channels("A", "B", "C"))
	Fold(acc, seqOf(t, channels("X", "A", "B", "Y", "C")))
	if want := []string{"X", "A", "B", "Y", "C"}; !reflect.DeepEqual(acc.Order, want) {
		t.Errorf("order = %v; want %v", acc.Order, want)
	}
}

func TestFold_disjointSourceLandsAtFront(t *testing.T) {
	// No overlap at all: the whole incoming block lands at the front in its
	// own order.
	acc := seqOf(t, channels("A", "B"))
	Fold(acc, seqOf(t, channels("N1", "N2")))
	if want := []string{"N1", "N2", "A", "B"}; !reflect.DeepEqual(acc.Order, want) {
		t.Errorf("order = %v; want %v", acc.Order, want)
	}
}

func TestFold_newPrefixBeforeSharedChannel(t *testing.T) {
	// N precedes every channel the sources share, so it lands at the front;
	// the cursor never jumps ahead of the walk.
	acc := seqOf(t, channels("A", "B", "C"))
	Fold(acc, seqOf(t, channels("N", "B")))
	if want := []string{"N", "A", "B", "C"}; !reflect.DeepEqual(acc.Order, want) {
		t.Errorf("order = %v; want %v", acc.Order, want)
	}
}

func TestFold_nonMonotonicIncomingKeepsMovingForward(t *testing.T) {
	// Incoming order runs backwards relative to the accumulator. The cursor
	// follows the most recent known position, so N lands right after A even
	// though B sits later in the accumulator.
	acc := seqOf(t, channels("A", "B"))
	Fold(acc, seqOf(t, channels("B", "A", "N")))
	if want := []string{"A", "N", "B"}; !reflect.DeepEqual(acc.Order, want) {
		t.Errorf("order = %v; want %v", acc.Order, want)
	}
}

func TestFold_latestMetadataWins(t *testing.T) {
	acc := seqOf(t, "#EXTINF:-1 group-title=\"Old\",News\nhttp://u/1\n")
	Fold(acc, seqOf(t, "#EXTINF:-1 group-title=\"New\",News\nhttp://u/2\n"))
	got := acc.ByName["News"].Extinf
	if !strings.Contains(got, `group-title="New"`) {
		t.Errorf("metadata line = %q; want the later source's line", got)
	}
	if want := []string{"http://u/1", "http://u/2"}; !reflect.DeepEqual(acc.ByName["News"].SortedURLs(), want) {
		t.Errorf("urls = %v; want union %v", acc.ByName["News"].SortedURLs(), want)
	}
}

func TestFold_headerNeverFallsThrough(t *testing.T) {
	noHeader := channels("A")
	withHeader := "#EXTM3U later\n" + channels("B")
	got := All([]*playlist.Sequence{playlist.ParseString(noHeader), playlist.ParseString(withHeader)})
	if got.Header != "" {
		t.Errorf("header = %q; want empty (first source had none)", got.Header)
	}

	got = All([]*playlist.Sequence{playlist.ParseString("#EXTM3U first\n" + noHeader), playlist.ParseString(withHeader)})
	if got.Header != "#EXTM3U first" {
		t.Errorf("header = %q; want the first source's", got.Header)
	}
}

func TestMergeAll_urlUnionOrderIndependent(t *testing.T) {
	a := "#EXTINF:-1,C\nhttp://u/1\nhttp://u/2\n"
	b := "#EXTINF:-1,C\nhttp://u/2\nhttp://u/3\n"
	ab := All([]*playlist.Sequence{playlist.ParseString(a), playlist.ParseString(b)})
	ba := All([]*playlist.Sequence{playlist.ParseString(b), playlist.ParseString(a)})
	if !reflect.DeepEqual(ab.ByName["C"].SortedURLs(), ba.ByName["C"].SortedURLs()) {
		t.Errorf("URL union depends on source order: %v vs %v",
			ab.ByName["C"].SortedURLs(), ba.ByName["C"].SortedURLs())
	}
}

func TestMergeAll_noDuplicateIdentities(t *testing.T) {
	texts := []string{
		channels("A", "B", "C"),
		channels("C", "D", "A"),
		channels("E", "B", "E"),
		channels("D", "A", "F", "C"),
	}
	acc := All(parseAll(texts))
	seen := make(map[string]bool, len(acc.Order))
	for _, n := range acc.Order {
		if seen[n] {
			t.Fatalf("duplicate identity %q in final order %v", n, acc.Order)
		}
		seen[n] = true
	}
	if len(acc.Order) != len(acc.ByName) {
		t.Errorf("order has %d entries, records %d", len(acc.Order), len(acc.ByName))
	}
}

func TestMergeAll_empty(t *testing.T) {
	if got := MergeAll(nil); got != "" {
		t.Errorf("MergeAll(nil) = %q; want empty", got)
	}
	if got := MergeAll([]string{"", ""}); got != "" {
		t.Errorf("MergeAll of empty sources = %q; want empty", got)
	}
}

func parseAll(texts []string) []*playlist.Sequence {
	seqs := make([]*playlist.Sequence, len(texts))
	for i, t := range texts {
		seqs[i] = playlist.ParseString(t)
	}
	return seqs
}
