package animtex

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// FetchBytes returns a fetch function that yields data as-is. Use it when
// the encoded animation is already in memory.
func FetchBytes(data []byte) func(context.Context) ([]byte, error) {
	return func(context.Context) ([]byte, error) {
		return data, nil
	}
}

// FetchURL returns a fetch function that downloads the animation over HTTP
// with the default client. The request is bound to the texture's lifetime:
// closing the texture before the download finishes cancels it.
func FetchURL(url string) func(context.Context) ([]byte, error) {
	return func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch %s: status %s", url, resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
		return data, nil
	}
}
