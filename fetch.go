package linkpreview

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
)

// Fetcher retrieves metadata for a URL from the remote extraction endpoint.
// Implementations must honor ctx cancellation; the queue enforces its fetch
// timeout through it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Metadata, error)
}

// maxResponseBody caps how much of a response is read. Preview envelopes are
// small; anything larger is hostile or broken.
const maxResponseBody = 1 << 20

// HTTPFetcher calls a metadata-extraction endpoint speaking the
// microlink-style envelope:
//
//	GET {Endpoint}?url=<escaped> ->
//	{"status":"success","data":{"title":...,"description":...,"image":{"url":...},"logo":{"url":...}}}
//
// Non-200 responses, non-"success" envelopes and malformed bodies are
// errors; the queue downgrades them to soft misses.
type HTTPFetcher struct {
	Endpoint string
	Client   *http.Client // nil => http.DefaultClient
	MaxBody  int64        // response size cap; 0 => maxResponseBody
}

var _ Fetcher = (*HTTPFetcher)(nil)

type previewEnvelope struct {
	Status string `json:"status"`
	Data   struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Image       struct {
			URL string `json:"url"`
		} `json:"image"`
		Logo struct {
			URL string `json:"url"`
		} `json:"logo"`
	} `json:"data"`
}

func (f *HTTPFetcher) Fetch(ctx context.Context, target string) (Metadata, error) {
	reqURL := f.Endpoint + "?url=" + url.QueryEscape(target)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Metadata{}, &FetchError{URL: target, Reason: "build request", Err: err}
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Metadata{}, &FetchError{URL: target, Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Metadata{}, &FetchError{URL: target, Status: resp.StatusCode, Reason: "unexpected status"}
	}

	limit := f.MaxBody
	if limit <= 0 {
		limit = maxResponseBody
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return Metadata{}, &FetchError{URL: target, Reason: "read body", Err: err}
	}

	var env previewEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Metadata{}, &FetchError{URL: target, Reason: "malformed response", Err: err}
	}
	if env.Status != "success" {
		return Metadata{}, &FetchError{URL: target, Reason: "status " + env.Status}
	}

	return Metadata{
		Title:       env.Data.Title,
		Description: env.Data.Description,
		Image:       env.Data.Image.URL,
		Favicon:     env.Data.Logo.URL,
	}, nil
}
