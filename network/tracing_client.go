package network

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dietfit/meal-mapping-services/matching"
	"github.com/dietfit/meal-mapping-services/models/records"
	"github.com/op/go-logging"
)

// TracingClient supports the read-only calls we make to the tracing
// backend's public REST API. Authentication is HTTP basic with the
// project's public and secret keys.
type TracingClient struct {
	HostURL    string
	APIVersion string
	PublicKey  string
	SecretKey  string
	PageSize   int
	httpClient *http.Client
	logger     *logging.Logger
	normalizer *matching.Normalizer
}

// NewTracingClient creates a new tracing backend client. Param
// hostURL should come from the config file. Timestamps in every
// returned trace are already normalized to the target zone.
func NewTracingClient(hostURL, apiVersion, publicKey, secretKey string, pageSize int, normalizer *matching.Normalizer, logger *logging.Logger) (*TracingClient, error) {
	if hostURL == "" {
		return nil, fmt.Errorf("tracing client requires a host URL")
	}
	if pageSize < 1 {
		pageSize = 50
	}
	return &TracingClient{
		HostURL:    hostURL,
		APIVersion: apiVersion,
		PublicKey:  publicKey,
		SecretKey:  secretKey,
		PageSize:   pageSize,
		httpClient: &http.Client{Timeout: 90 * time.Second},
		logger:     logger,
		normalizer: normalizer,
	}, nil
}

// TraceList returns one page of traces in the half-open window
// [from, to). Use TracesInWindow to walk all pages.
func (client *TracingClient) TraceList(from, to time.Time, page int) *TracingResponse {
	v := url.Values{}
	v.Set("fromTimestamp", from.UTC().Format(time.RFC3339))
	v.Set("toTimestamp", to.UTC().Format(time.RFC3339))
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(client.PageSize))
	relativeURL := fmt.Sprintf("/api/public/%s/traces?%s", client.APIVersion, v.Encode())
	resp := NewTracingResponse(client.normalizer)
	client.doRequest(resp, client.BuildURL(relativeURL))
	if resp.Error != nil {
		return resp
	}
	resp.UnmarshalJSONList()
	return resp
}

// TracesInWindow returns all traces in the half-open window [from, to),
// walking the backend's pages internally and deduplicating by trace ID
// across pages. The backend occasionally repeats a trace on a page
// boundary when new traces arrive mid-pagination. The second return
// value is the number of traces dropped for unparseable timestamps
// across all pages; callers count those as skipped records.
func (client *TracingClient) TracesInWindow(from, to time.Time) ([]*records.Trace, int, error) {
	seen := make(map[string]bool)
	all := make([]*records.Trace, 0)
	invalid := 0
	for page := 1; ; page++ {
		client.logger.Infof("Fetching traces page %d", page)
		resp := client.TraceList(from, to, page)
		if resp.Error != nil {
			return nil, invalid, resp.Error
		}
		traces := resp.Traces()
		invalid += resp.InvalidTimestampCount()

		// The last-page check must run on the wire-page length,
		// kept plus dropped. Checking only the kept traces would
		// end the walk on any full page that contained a trace
		// with an unparseable timestamp.
		wireCount := len(traces) + resp.InvalidTimestampCount()
		if wireCount == 0 {
			break
		}
		for _, trace := range traces {
			if seen[trace.ID] {
				continue
			}
			seen[trace.ID] = true
			all = append(all, trace)
		}
		if wireCount < client.PageSize {
			break
		}
	}
	return all, invalid, nil
}

// BuildURL combines the host and URL and returns the full URL.
func (client *TracingClient) BuildURL(relativeURL string) string {
	return client.HostURL + relativeURL
}

func (client *TracingClient) doRequest(resp *TracingResponse, absoluteURL string) {
	req, err := http.NewRequest(http.MethodGet, absoluteURL, nil)
	if err != nil {
		resp.Error = err
		return
	}
	req.SetBasicAuth(client.PublicKey, client.SecretKey)
	req.Header.Set("Accept", "application/json")
	resp.Request = req
	resp.Response, resp.Error = client.httpClient.Do(req)
	if resp.Error != nil {
		return
	}
	if resp.Response.StatusCode != http.StatusOK {
		body, _ := resp.RawResponseData()
		resp.Error = fmt.Errorf("tracing backend returned status %d for %s: %s",
			resp.Response.StatusCode, absoluteURL, string(body))
	}
}
