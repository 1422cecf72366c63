// Command m3u-merge consolidates several IPTV M3U playlists into one.
//
//	merge  Load every source, merge in order, write the output playlist
//	check  Verify each source is reachable without writing anything
//	serve  Merge on a refresh timer and serve the result over HTTP
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/m3umerge/m3u-merge/internal/classify"
	"github.com/m3umerge/m3u-merge/internal/config"
	"github.com/m3umerge/m3u-merge/internal/httpclient"
	"github.com/m3umerge/m3u-merge/internal/merge"
	"github.com/m3umerge/m3u-merge/internal/playlist"
	"github.com/m3umerge/m3u-merge/internal/rank"
	"github.com/m3umerge/m3u-merge/internal/rename"
	"github.com/m3umerge/m3u-merge/internal/rules"
	"github.com/m3umerge/m3u-merge/internal/server"
	"github.com/m3umerge/m3u-merge/internal/source"
	"github.com/m3umerge/m3u-merge/internal/writeatomic"
)

// inputList collects repeated -i flags.
type inputList []string

func (l *inputList) String() string     { return strings.Join(*l, ",") }
func (l *inputList) Set(v string) error { *l = append(*l, v); return nil }

// gatherInputs merges CLI -i flags, env inputs and rules-file sources in that
// order, dropping any entry that would clobber the output file.
func gatherInputs(flagInputs []string, cfg *config.Config, r *rules.Rules, output string) []string {
	var refs []string
	refs = append(refs, flagInputs...)
	if len(refs) == 0 {
		refs = append(refs, cfg.Inputs...)
	}
	refs = append(refs, r.Sources...)

	out := refs[:0]
	for _, ref := range refs {
		if output != "" && ref == output {
			log.Printf("Skipping input %s: it is the output file", ref)
			continue
		}
		out = append(out, ref)
	}
	return out
}

// buildPlaylist loads every input, merges them in order and applies the rules.
// The first input is load-bearing: its failure aborts the build. Later inputs
// that fail are skipped with a warning so one dead provider cannot take the
// whole playlist down.
func buildPlaylist(ctx context.Context, loader *source.Loader, inputs []string, r *rules.Rules) (string, int, error) {
	if len(inputs) == 0 {
		return "", 0, fmt.Errorf("no inputs: pass -i or set M3U_MERGE_INPUTS")
	}

	var seqs []*playlist.Sequence
	for i, ref := range inputs {
		text, err := loader.Load(ctx, ref)
		if err != nil {
			if i == 0 {
				return "", 0, fmt.Errorf("first source %s: %w", ref, err)
			}
			log.Printf("Skipping source %s: %v", ref, err)
			continue
		}
		seq := playlist.ParseString(text)
		log.Printf("Loaded %s: %d channels", ref, seq.Len())
		seqs = append(seqs, seq)
	}

	acc := merge.All(seqs)
	rename.Apply(acc, r.Rename)
	if r.Classify {
		classify.Collapse(acc)
		classify.Arrange(acc, r.Labels)
	}

	var text string
	if len(r.Quality) > 0 {
		ranker := rank.New(r.Quality)
		text = acc.EncodeWith(ranker.URLs)
	} else {
		text = acc.Encode()
	}
	return text, acc.Len(), nil
}

// newLoader wires the fetch cache in when one is configured.
func newLoader(cfg *config.Config) (*source.Loader, func(), error) {
	loader := &source.Loader{}
	if cfg.FetchTimeout > 0 {
		loader.Client = httpclient.WithTimeout(cfg.FetchTimeout)
	}
	if cfg.CachePath == "" {
		return loader, func() {}, nil
	}
	cache, err := source.OpenCache(cfg.CachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache %s: %w", cfg.CachePath, err)
	}
	loader.Cache = cache
	return loader, func() { _ = cache.Close() }, nil
}

func main() {
	_ = config.LoadEnvFile(".env")
	log.SetFlags(log.LstdFlags)
	log.SetPrefix("[m3u-merge] ")

	mergeCmd := flag.NewFlagSet("merge", flag.ExitOnError)
	var mergeInputs inputList
	mergeCmd.Var(&mergeInputs, "i", "Input playlist (file path or http(s) URL); repeatable, merged in order")
	mergeOutput := mergeCmd.String("o", "", "Output path (default: M3U_MERGE_OUTPUT or merged.m3u)")
	mergeRules := mergeCmd.String("rules", "", "YAML rules file (default: M3U_MERGE_RULES)")
	mergeStdout := mergeCmd.Bool("stdout", false, "Write the merged playlist to stdout instead of a file")
	mergeClassify := mergeCmd.Bool("classify", false, "Collapse duplicate channels and arrange into groups")

	checkCmd := flag.NewFlagSet("check", flag.ExitOnError)
	var checkInputs inputList
	checkCmd.Var(&checkInputs, "i", "Source to check; repeatable (default: M3U_MERGE_INPUTS)")
	checkTimeout := checkCmd.Duration("timeout", 20*time.Second, "Timeout per source")

	serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
	var serveInputs inputList
	serveCmd.Var(&serveInputs, "i", "Input playlist; repeatable (default: M3U_MERGE_INPUTS)")
	serveAddr := serveCmd.String("addr", "", "Listen address (default: M3U_MERGE_ADDR or :8560)")
	serveRules := serveCmd.String("rules", "", "YAML rules file (default: M3U_MERGE_RULES)")
	serveRefresh := serveCmd.Duration("refresh", 0, "Re-merge interval, e.g. 6h (default: M3U_MERGE_REFRESH; 0 = only at startup)")

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <merge|check|serve> [flags]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  merge  Load every source, merge in order, write the output playlist\n")
		fmt.Fprintf(os.Stderr, "  check  Verify each source is reachable\n")
		fmt.Fprintf(os.Stderr, "  serve  Merge on a refresh timer and serve over HTTP (/playlist.m3u, /healthz, /metrics)\n")
		os.Exit(1)
	}

	cfg := config.Load()

	switch os.Args[1] {
	case "merge":
		_ = mergeCmd.Parse(os.Args[2:])
		output := *mergeOutput
		if output == "" {
			output = cfg.Output
		}
		rulesPath := *mergeRules
		if rulesPath == "" {
			rulesPath = cfg.RulesPath
		}
		r, err := rules.Load(rulesPath)
		if err != nil {
			log.Printf("Rules: %v", err)
			os.Exit(1)
		}
		if *mergeClassify || cfg.Classify {
			r.Classify = true
		}
		inputs := gatherInputs(mergeInputs, cfg, r, output)

		loader, closeLoader, err := newLoader(cfg)
		if err != nil {
			log.Printf("%v", err)
			os.Exit(1)
		}
		defer closeLoader()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout*time.Duration(max(len(inputs), 1)))
		defer cancel()
		text, channels, err := buildPlaylist(ctx, loader, inputs, r)
		if err != nil {
			log.Printf("Merge failed: %v", err)
			os.Exit(1)
		}
		if *mergeStdout {
			fmt.Print(text)
			return
		}
		if err := writeatomic.WriteFile(output, []byte(text), 0o644); err != nil {
			log.Printf("Write %s: %v", output, err)
			os.Exit(1)
		}
		log.Printf("Wrote %s: %d channels from %d source(s)", output, channels, len(inputs))

	case "check":
		_ = checkCmd.Parse(os.Args[2:])
		inputs := []string(checkInputs)
		if len(inputs) == 0 {
			inputs = cfg.Inputs
		}
		if len(inputs) == 0 {
			log.Print("No sources to check. Pass -i or set M3U_MERGE_INPUTS")
			os.Exit(1)
		}
		failed := 0
		for _, ref := range inputs {
			ctx, cancel := context.WithTimeout(context.Background(), *checkTimeout)
			err := source.Check(ctx, ref)
			cancel()
			if err != nil {
				log.Printf("  FAIL %s: %v", ref, err)
				failed++
				continue
			}
			log.Printf("  OK   %s", ref)
		}
		log.Printf("--- %d/%d sources OK ---", len(inputs)-failed, len(inputs))
		if failed > 0 {
			os.Exit(1)
		}

	case "serve":
		_ = serveCmd.Parse(os.Args[2:])
		addr := *serveAddr
		if addr == "" {
			addr = cfg.ListenAddr
		}
		refresh := *serveRefresh
		if refresh == 0 {
			refresh = cfg.RefreshInterval
		}
		rulesPath := *serveRules
		if rulesPath == "" {
			rulesPath = cfg.RulesPath
		}
		r, err := rules.Load(rulesPath)
		if err != nil {
			log.Printf("Rules: %v", err)
			os.Exit(1)
		}
		if cfg.Classify {
			r.Classify = true
		}
		inputs := gatherInputs(serveInputs, cfg, r, "")

		loader, closeLoader, err := newLoader(cfg)
		if err != nil {
			log.Printf("%v", err)
			os.Exit(1)
		}
		defer closeLoader()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := &server.Server{
			Addr:     addr,
			Refresh:  refresh,
			MaxConns: cfg.MaxConns,
			Build: func(ctx context.Context) (string, int, error) {
				return buildPlaylist(ctx, loader, inputs, r)
			},
		}
		if err := srv.Run(ctx); err != nil {
			log.Printf("Serve failed: %v", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		os.Exit(1)
	}
}
