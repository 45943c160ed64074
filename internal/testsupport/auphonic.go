package testsupport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// RecordedRequest is one call received by FakeAuphonic.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	Body          []byte
	FormField     string
	FormFilename  string
	FormContent   []byte
}

type cannedResponse struct {
	status int
	body   string
}

// FakeAuphonic is an in-memory stand-in for the Auphonic API.
type FakeAuphonic struct {
	Server *httptest.Server

	Token        string
	ProductionID string
	OutputFormat string
	OutputBody   string
	Credits      float64
	// NoOutputFiles makes GetProduction return a production without results.
	NoOutputFiles bool

	mu       sync.Mutex
	requests []RecordedRequest
	failures map[string]cannedResponse
}

// NewFakeAuphonic starts a fake API server and registers cleanup.
func NewFakeAuphonic(t testing.TB) *FakeAuphonic {
	t.Helper()
	fake := &FakeAuphonic{
		Token:        "test-token",
		ProductionID: "prod-123",
		OutputFormat: "mp3",
		OutputBody:   "ID3-optimized-audio",
		Credits:      42.5,
		failures:     make(map[string]cannedResponse),
	}
	fake.Server = httptest.NewServer(http.HandlerFunc(fake.serve))
	t.Cleanup(fake.Server.Close)
	return fake
}

// URL returns the API base URL.
func (f *FakeAuphonic) URL() string { return f.Server.URL }

// Fail makes requests matching method and path answer with status and body.
func (f *FakeAuphonic) Fail(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = cannedResponse{status: status, body: body}
}

// SetCredits changes the balance reported by /user.json.
func (f *FakeAuphonic) SetCredits(credits float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Credits = credits
}

// SetNoOutputFiles toggles NoOutputFiles while the server is running.
func (f *FakeAuphonic) SetNoOutputFiles(value bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.NoOutputFiles = value
}

// Requests returns every request received so far.
func (f *FakeAuphonic) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// Calls counts requests matching method and path.
func (f *FakeAuphonic) Calls(method, path string) int {
	count := 0
	for _, req := range f.Requests() {
		if req.Method == method && req.Path == path {
			count++
		}
	}
	return count
}

// Last returns the most recent request matching method and path.
func (f *FakeAuphonic) Last(method, path string) (RecordedRequest, bool) {
	requests := f.Requests()
	for i := len(requests) - 1; i >= 0; i-- {
		if requests[i].Method == method && requests[i].Path == path {
			return requests[i], true
		}
	}
	return RecordedRequest{}, false
}

// Sequence lists "METHOD path" for every request in arrival order.
func (f *FakeAuphonic) Sequence() []string {
	requests := f.Requests()
	out := make([]string, 0, len(requests))
	for _, req := range requests {
		out = append(out, req.Method+" "+req.Path)
	}
	return out
}

// DownloadPath is the path of the fake result file.
func (f *FakeAuphonic) DownloadPath() string {
	return "/download/" + f.ProductionID + "/result." + f.OutputFormat
}

func (f *FakeAuphonic) serve(w http.ResponseWriter, r *http.Request) {
	record := RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if file, header, err := r.FormFile("input_file"); err == nil {
			record.FormField = "input_file"
			record.FormFilename = header.Filename
			record.FormContent, _ = io.ReadAll(file)
			file.Close()
		}
	} else {
		record.Body, _ = io.ReadAll(r.Body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, record)
	failure, failed := f.failures[r.Method+" "+r.URL.Path]
	credits, noOutputs := f.Credits, f.NoOutputFiles
	f.mu.Unlock()

	if failed {
		w.WriteHeader(failure.status)
		_, _ = io.WriteString(w, failure.body)
		return
	}

	if strings.HasPrefix(r.URL.Path, "/download/") {
		if r.URL.Query().Get("bearer_token") != f.Token {
			http.Error(w, "bad token", http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, f.OutputBody)
		return
	}

	if r.Header.Get("Authorization") != "Bearer "+f.Token {
		http.Error(w, `{"error_message":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	production := "/production/" + f.ProductionID
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/productions.json":
		f.writeData(w, map[string]any{"uuid": f.ProductionID, "status": 9})
	case r.Method == http.MethodPost && r.URL.Path == production+"/upload.json":
		f.writeData(w, map[string]any{"uuid": f.ProductionID})
	case r.Method == http.MethodPost && r.URL.Path == production+".json":
		f.writeData(w, map[string]any{"uuid": f.ProductionID})
	case r.Method == http.MethodPost && r.URL.Path == production+"/start.json":
		f.writeData(w, map[string]any{"uuid": f.ProductionID, "status": 0})
	case r.Method == http.MethodDelete && r.URL.Path == production+".json":
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet && r.URL.Path == production+".json":
		outputs := []map[string]any{}
		if !noOutputs {
			outputs = append(outputs, map[string]any{
				"format":       f.OutputFormat,
				"ending":       f.OutputFormat,
				"download_url": f.Server.URL + f.DownloadPath(),
			})
		}
		f.writeData(w, map[string]any{
			"uuid":          f.ProductionID,
			"status":        3,
			"status_string": "Done",
			"output_files":  outputs,
		})
	case r.Method == http.MethodGet && r.URL.Path == "/user.json":
		f.writeData(w, map[string]any{"credits": credits})
	default:
		http.Error(w, fmt.Sprintf(`{"error_message":"no route for %s %s"}`, r.Method, r.URL.Path), http.StatusNotFound)
	}
}

func (f *FakeAuphonic) writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"status_code": 200, "data": data})
}
