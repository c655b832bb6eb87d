// Package wait blocks integration tests until the services under test answer.
package wait

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const pollEvery = 200 * time.Millisecond

// Healthy polls {baseURL}/healthz until it answers 200 or ctx is done.
// The returned error carries the last status or transport error seen.
func Healthy(ctx context.Context, baseURL string) error {
	target := strings.TrimRight(baseURL, "/") + "/healthz"
	client := &http.Client{Timeout: time.Second}

	var last string
	ticker := time.NewTicker(pollEvery)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
			last = resp.Status
		} else {
			last = err.Error()
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s not healthy (last: %s): %w", target, last, ctx.Err())
		case <-ticker.C:
		}
	}
}
