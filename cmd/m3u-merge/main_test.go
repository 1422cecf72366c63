package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m3umerge/m3u-merge/internal/config"
	"github.com/m3umerge/m3u-merge/internal/rules"
	"github.com/m3umerge/m3u-merge/internal/source"
)

func writePlaylist(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildPlaylist_mergesLocalAndRemote(t *testing.T) {
	dir := t.TempDir()
	first := writePlaylist(t, dir, "a.m3u",
		"#EXTM3U\n#EXTINF:-1,News\nhttp://a/news\n#EXTINF:-1,Sports\nhttp://a/sports\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#EXTM3U x-remote\n#EXTINF:-1 tvg-id=\"n1\",News\nhttp://b/news\n#EXTINF:-1,Movies\nhttp://b/movies\n"))
	}))
	defer srv.Close()

	text, channels, err := buildPlaylist(context.Background(), &source.Loader{Client: srv.Client()},
		[]string{first, srv.URL + "/b.m3u"}, &rules.Rules{})
	if err != nil {
		t.Fatal(err)
	}
	if channels != 3 {
		t.Errorf("channels = %d", channels)
	}
	want := "#EXTM3U\n" +
		"#EXTINF:-1 tvg-id=\"n1\",News\n" +
		"http://a/news\nhttp://b/news\n" +
		"#EXTINF:-1,Movies\nhttp://b/movies\n" +
		"#EXTINF:-1,Sports\nhttp://a/sports\n"
	if text != want {
		t.Errorf("merged playlist:\n%s\nwant:\n%s", text, want)
	}
}

func TestBuildPlaylist_firstSourceFailureIsFatal(t *testing.T) {
	_, _, err := buildPlaylist(context.Background(), &source.Loader{},
		[]string{filepath.Join(t.TempDir(), "absent.m3u")}, &rules.Rules{})
	if err == nil {
		t.Fatal("missing first source must fail the build")
	}
}

func TestBuildPlaylist_laterSourceFailureIsSkipped(t *testing.T) {
	dir := t.TempDir()
	first := writePlaylist(t, dir, "a.m3u", "#EXTM3U\n#EXTINF:-1,News\nhttp://a/news\n")

	text, channels, err := buildPlaylist(context.Background(), &source.Loader{},
		[]string{first, filepath.Join(dir, "absent.m3u")}, &rules.Rules{})
	if err != nil {
		t.Fatal(err)
	}
	if channels != 1 || !strings.Contains(text, "http://a/news") {
		t.Errorf("channels = %d text = %q", channels, text)
	}
}

func TestBuildPlaylist_qualityRanksURLs(t *testing.T) {
	dir := t.TempDir()
	a := writePlaylist(t, dir, "a.m3u", "#EXTM3U\n#EXTINF:-1,News\nhttp://x/sd/news\n")
	b := writePlaylist(t, dir, "b.m3u", "#EXTM3U\n#EXTINF:-1,News\nhttp://x/hd/news\n")

	text, _, err := buildPlaylist(context.Background(), &source.Loader{},
		[]string{a, b}, &rules.Rules{Quality: []string{"hd"}})
	if err != nil {
		t.Fatal(err)
	}
	hd := strings.Index(text, "http://x/hd/news")
	sd := strings.Index(text, "http://x/sd/news")
	if hd < 0 || sd < 0 || hd > sd {
		t.Errorf("hd URL must come first:\n%s", text)
	}
}

func TestBuildPlaylist_noInputs(t *testing.T) {
	if _, _, err := buildPlaylist(context.Background(), &source.Loader{}, nil, &rules.Rules{}); err == nil {
		t.Fatal("no inputs must be an error")
	}
}

func TestGatherInputs(t *testing.T) {
	cfg := &config.Config{Inputs: []string{"env.m3u"}}
	r := &rules.Rules{Sources: []string{"extra.m3u"}}

	got := gatherInputs([]string{"cli.m3u"}, cfg, r, "out.m3u")
	if len(got) != 2 || got[0] != "cli.m3u" || got[1] != "extra.m3u" {
		t.Errorf("flag inputs must shadow env inputs: %v", got)
	}

	got = gatherInputs(nil, cfg, r, "env.m3u")
	if len(got) != 1 || got[0] != "extra.m3u" {
		t.Errorf("output file must be dropped from inputs: %v", got)
	}
}
