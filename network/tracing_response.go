package network

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/dietfit/meal-mapping-services/matching"
	"github.com/dietfit/meal-mapping-services/models/records"
)

// TracingResponse wraps one HTTP response from the tracing backend.
type TracingResponse struct {
	// Page is the page number this response covers.
	Page int

	// TotalItems is the total number of traces matching the query,
	// across all pages.
	TotalItems int

	// TotalPages is the number of pages available for the query.
	TotalPages int

	// The HTTP request that was (or would have been) sent. Useful
	// for logging and debugging.
	Request *http.Request

	// The HTTP response from the server. Do not try to read
	// Response.Body, since it's already been read and the stream has
	// been closed. Use the RawResponseData() method instead.
	Response *http.Response

	// The error, if any, that occurred while processing this request.
	// Errors may come from the server (4xx or 5xx responses) or from
	// the client (e.g. if it could not parse the JSON response).
	Error error

	normalizer        *matching.Normalizer
	traces            []*records.Trace
	invalidTimestamps int
	hasBeenRead       bool
	listHasBeenParsed bool
	data              []byte
}

// apiTrace is the backend's wire representation of one trace.
type apiTrace struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	UserID    string  `json:"userId"`
	Timestamp string  `json:"timestamp"`
	SessionID string  `json:"sessionId"`
	Model     string  `json:"model"`
	Input     string  `json:"input"`
	Output    string  `json:"output"`
	TotalCost float64 `json:"totalCost"`
}

func NewTracingResponse(normalizer *matching.Normalizer) *TracingResponse {
	return &TracingResponse{
		normalizer: normalizer,
	}
}

// RawResponseData returns the raw body of the HTTP response as a byte
// slice. The return value may be nil.
func (resp *TracingResponse) RawResponseData() ([]byte, error) {
	if !resp.hasBeenRead {
		resp.readResponse()
	}
	return resp.data, resp.Error
}

// Reads the body of an HTTP response object, closes the stream, and
// stores the byte array. The body MUST be closed, or we wind up with
// a lot of open network connections.
func (resp *TracingResponse) readResponse() {
	if !resp.hasBeenRead && resp.Response != nil && resp.Response.Body != nil {
		resp.data, resp.Error = io.ReadAll(resp.Response.Body)
		resp.Response.Body.Close()
		resp.hasBeenRead = true
	}
}

// Traces returns the traces parsed from the HTTP response body, with
// timestamps already normalized to the target zone. Traces whose
// timestamps could not be normalized are excluded; see
// InvalidTimestampCount.
func (resp *TracingResponse) Traces() []*records.Trace {
	if resp.traces == nil {
		return make([]*records.Trace, 0)
	}
	return resp.traces
}

// InvalidTimestampCount returns the number of traces dropped from
// this page because their timestamps could not be normalized.
func (resp *TracingResponse) InvalidTimestampCount() int {
	return resp.invalidTimestamps
}

// UnmarshalJSONList converts the backend's paginated JSON response
// into usable Trace records. The list response has this structure:
//
//	{
//	  "data": [... array of trace objects ...],
//	  "meta": {"page": 1, "limit": 50, "totalItems": 93, "totalPages": 2}
//	}
func (resp *TracingResponse) UnmarshalJSONList() error {
	if resp.listHasBeenParsed {
		return nil
	}
	temp := struct {
		Data []*apiTrace `json:"data"`
		Meta struct {
			Page       int `json:"page"`
			TotalItems int `json:"totalItems"`
			TotalPages int `json:"totalPages"`
		} `json:"meta"`
	}{}
	data, err := resp.RawResponseData()
	if err != nil {
		resp.Error = err
		return err
	}
	resp.Error = json.Unmarshal(data, &temp)
	if resp.Error != nil {
		return resp.Error
	}
	resp.Page = temp.Meta.Page
	resp.TotalItems = temp.Meta.TotalItems
	resp.TotalPages = temp.Meta.TotalPages
	resp.traces = make([]*records.Trace, 0, len(temp.Data))
	for _, wire := range temp.Data {
		trace, err := resp.toRecord(wire)
		if err != nil {
			resp.invalidTimestamps++
			continue
		}
		resp.traces = append(resp.traces, trace)
	}
	resp.listHasBeenParsed = true
	return resp.Error
}

func (resp *TracingResponse) toRecord(wire *apiTrace) (*records.Trace, error) {
	ts, err := resp.normalizer.ParseString(wire.Timestamp)
	if err != nil {
		return nil, err
	}
	return &records.Trace{
		ID:        wire.ID,
		UserID:    wire.UserID,
		Timestamp: ts,
		Name:      wire.Name,
		Cost:      wire.TotalCost,
		Model:     wire.Model,
		Input:     wire.Input,
		Output:    wire.Output,
		SessionID: wire.SessionID,
	}, nil
}
