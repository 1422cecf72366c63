package rank

import (
	"reflect"
	"testing"

	"github.com/m3umerge/m3u-merge/internal/playlist"
)

func TestScore(t *testing.T) {
	r := New([]string{"4K", "1080", "720"})
	cases := []struct {
		url  string
		want int
	}{
		{"http://cdn/stream_4k.m3u8", 0},
		{"http://cdn/stream_1080p.m3u8", 1},
		{"http://cdn/720/stream.m3u8", 2},
		{"http://cdn/stream_sd.m3u8", 3},
	}
	for _, c := range cases {
		if got := r.Score(c.url); got != c.want {
			t.Errorf("Score(%q) = %d; want %d", c.url, got, c.want)
		}
	}
}

func TestSort(t *testing.T) {
	r := New([]string{"1080", "720"})
	urls := []string{
		"http://b/720.m3u8",
		"http://a/sd.m3u8",
		"http://c/1080.m3u8",
		"http://a/1080.m3u8",
	}
	r.Sort(urls)
	want := []string{
		"http://a/1080.m3u8",
		"http://c/1080.m3u8",
		"http://b/720.m3u8",
		"http://a/sd.m3u8",
	}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("Sort = %v; want %v", urls, want)
	}
}

func TestBest(t *testing.T) {
	r := New([]string{"hd"})
	ch := playlist.NewChannel("C", "#EXTINF:-1,C")
	if got := r.Best(ch); got != "" {
		t.Errorf("Best of empty set = %q; want empty", got)
	}
	ch.AddURL("http://u/sd")
	ch.AddURL("http://u/hd")
	if got := r.Best(ch); got != "http://u/hd" {
		t.Errorf("Best = %q; want the hd feed", got)
	}
}

func TestNew_normalisesKeywords(t *testing.T) {
	r := New([]string{" HD ", "", "fhd"})
	if got := r.Score("http://u/xHDx"); got != 0 {
		t.Errorf("case-insensitive match failed: score %d", got)
	}
	if got := r.Score("http://u/plain"); got != 2 {
		t.Errorf("no-match score = %d; want 2 (blank keyword dropped)", got)
	}
}
