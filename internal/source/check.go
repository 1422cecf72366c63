package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/m3umerge/m3u-merge/internal/httpclient"
)

// Check verifies that ref is reachable without downloading the whole list.
// Local paths must exist; URLs must answer the GET with 200. Some providers
// reject HEAD, so a GET is issued and the body discarded.
func Check(ctx context.Context, ref string) error {
	if ref == "" {
		return fmt.Errorf("no source given")
	}
	if !IsRemote(ref) {
		if _, err := os.Stat(ref); err != nil {
			return fmt.Errorf("source unreadable: %w", err)
		}
		return nil
	}

	if err := httpclient.Hosts.Wait(ctx, ref); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", httpclient.UserAgent)
	resp, err := httpclient.WithTimeout(15 * time.Second).Do(req)
	if err != nil {
		return fmt.Errorf("source unreachable: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("source returned HTTP %d", resp.StatusCode)
	}
	return nil
}
