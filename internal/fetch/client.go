package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"huntcore/internal/config"

	"github.com/cenkalti/backoff/v4"
)

// doJSON performs one HTTP exchange with bounded exponential-backoff retries.
// Retries live only at this boundary; the pure engine code never retries.
func doJSON(ctx context.Context, client *http.Client, method, url string, reqBody, respBody any) error {
	if client == nil {
		client = http.DefaultClient
	}

	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, config.FetchTimeout)
		defer cancel()

		var body io.Reader
		if reqBody != nil {
			payload, err := json.Marshal(reqBody)
			if err != nil {
				return backoff.Permanent(fmt.Errorf("encode request: %w", err))
			}
			body = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(callCtx, method, url, body)
		if err != nil {
			return backoff.Permanent(err)
		}
		if reqBody != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("upstream returned %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("upstream returned %d", resp.StatusCode))
		}

		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), config.FetchMaxRetries),
		ctx,
	)
	return backoff.Retry(operation, policy)
}
