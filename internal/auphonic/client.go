package auphonic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"podopt/internal/services"
)

// Production status codes reported by Auphonic.
const (
	ProductionStatusError = 2
	ProductionStatusDone  = 3
)

// Production mirrors the parts of an Auphonic production podopt reads.
type Production struct {
	UUID         string       `json:"uuid"`
	Status       int          `json:"status"`
	StatusString string       `json:"status_string"`
	OutputFiles  []OutputFile `json:"output_files"`
}

// OutputFile is one rendered result of a production.
type OutputFile struct {
	Format      string `json:"format"`
	Ending      string `json:"ending"`
	DownloadURL string `json:"download_url"`
}

type envelope[T any] struct {
	Data T `json:"data"`
}

// Config carries everything the client needs; nothing is read from the environment.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client talks to the Auphonic REST API. It is safe for concurrent use.
type Client struct {
	baseURL  string
	token    string
	timeout  time.Duration
	api      *http.Client
	transfer *http.Client

	mu         sync.Mutex
	configured map[string]struct{}
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for every request,
// including uploads and downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.api = client
			c.transfer = client
		}
	}
}

// New creates an Auphonic client.
func New(cfg Config, opts ...Option) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, services.Wrap(services.ErrConfiguration, "auphonic", "new client", "token required", nil)
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "auphonic", "new client", "base url required", nil)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		timeout:    timeout,
		api:        &http.Client{Timeout: timeout},
		transfer:   newTransferClient(timeout),
		configured: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// CreateJob creates a production whose completion is posted to callbackURL
// and returns its UUID.
func (c *Client) CreateJob(ctx context.Context, title, artist, callbackURL string) (string, error) {
	payload := map[string]any{
		"metadata": map[string]string{
			"title":  title,
			"artist": artist,
		},
		"webhook": callbackURL,
	}
	resp, body, err := c.doJSON(ctx, http.MethodPost, "/productions.json", payload)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "auphonic", "create production", "request failed", err)
	}
	if !success(resp.StatusCode) {
		return "", &JobCreationFailedError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var decoded envelope[Production]
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "auphonic", "create production", "decode response", err)
	}
	if decoded.Data.UUID == "" {
		return "", &JobCreationFailedError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return decoded.Data.UUID, nil
}

// UploadSource streams the source audio as the production's input_file.
// The configured timeout bounds stalls, not the whole transfer.
func (c *Client) UploadSource(ctx context.Context, jobID string, r io.Reader, filename string) error {
	if jobID == "" {
		return &JobNotFoundError{}
	}

	guard := newStallGuard(ctx, c.timeout)
	defer guard.release()
	r = &progressReader{r: r, guard: guard, pauseAtEOF: true}

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		part, err := form.CreateFormFile("input_file", filename)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = form.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := c.newRequest(guard.Context(), http.MethodPost, productionPath(jobID, "/upload.json"), pr)
	if err != nil {
		pr.Close()
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, body, err := c.do(c.transfer, req, guard)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "auphonic", "upload", "request failed", err)
	}
	if !success(resp.StatusCode) {
		return &UploadFailedError{JobID: jobID, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// Configure validates settings and posts output files plus algorithms. A
// successful call marks the production as configured for Start.
func (c *Client) Configure(ctx context.Context, jobID string, settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if jobID == "" {
		return &JobNotFoundError{}
	}

	payload := map[string]any{
		"output_files": []map[string]any{{
			"format":  settings.OutputFormat(),
			"bitrate": settings.Bitrate(),
		}},
		"algorithms": map[string]any{
			"hipfilter":      settings.Filtering(),
			"leveler":        settings.AdaptiveLeveler(),
			"denoise":        settings.NoiseHumReduction(),
			"denoiseamount":  settings.NoiseReductionAmount(),
			"normloudness":   settings.LoudnessNormalization(),
			"loudnesstarget": settings.LoudnessTarget(),
		},
	}
	resp, body, err := c.doJSON(ctx, http.MethodPost, productionPath(jobID, ".json"), payload)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "auphonic", "configure", "request failed", err)
	}
	if !success(resp.StatusCode) {
		return &ConfigureFailedError{JobID: jobID, StatusCode: resp.StatusCode, Body: string(body)}
	}

	c.mu.Lock()
	c.configured[jobID] = struct{}{}
	c.mu.Unlock()
	return nil
}

// Start begins processing. It makes no request unless Configure succeeded
// for jobID on this client.
func (c *Client) Start(ctx context.Context, jobID string) error {
	if jobID == "" {
		return &JobNotFoundError{}
	}
	if !c.IsConfigured(jobID) {
		return &AlgorithmsNotConfiguredError{JobID: jobID}
	}

	resp, body, err := c.doJSON(ctx, http.MethodPost, productionPath(jobID, "/start.json"), nil)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "auphonic", "start", "request failed", err)
	}
	if !success(resp.StatusCode) {
		return &StartFailedError{JobID: jobID, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// DeleteJob removes the production and forgets its configured mark.
func (c *Client) DeleteJob(ctx context.Context, jobID string) error {
	if jobID == "" {
		return &JobNotFoundError{}
	}
	c.mu.Lock()
	delete(c.configured, jobID)
	c.mu.Unlock()

	resp, body, err := c.doJSON(ctx, http.MethodDelete, productionPath(jobID, ".json"), nil)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "auphonic", "delete", "request failed", err)
	}
	if !success(resp.StatusCode) {
		return &JobNotFoundError{JobID: jobID, Deletion: true, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// IsConfigured reports whether Configure succeeded for jobID.
func (c *Client) IsConfigured(jobID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.configured[jobID]
	return ok
}

// GetProduction fetches the production's status and output files.
func (c *Client) GetProduction(ctx context.Context, jobID string) (*Production, error) {
	if jobID == "" {
		return nil, &JobNotFoundError{}
	}
	resp, body, err := c.doJSON(ctx, http.MethodGet, productionPath(jobID, ".json"), nil)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "auphonic", "get production", "request failed", err)
	}
	if !success(resp.StatusCode) {
		return nil, &JobNotFoundError{JobID: jobID, StatusCode: resp.StatusCode, Body: string(body)}
	}
	var decoded envelope[Production]
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "auphonic", "get production", "decode response", err)
	}
	return &decoded.Data, nil
}

// Credits returns the remaining processing credits in hours.
func (c *Client) Credits(ctx context.Context) (float64, error) {
	resp, body, err := c.doJSON(ctx, http.MethodGet, "/user.json", nil)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "auphonic", "credits", "request failed", err)
	}
	if !success(resp.StatusCode) {
		return 0, services.Wrap(services.ErrExternalTool, "auphonic", "credits", fmt.Sprintf("status %d: %s", resp.StatusCode, snippet(string(body))), nil)
	}
	var decoded envelope[struct {
		Credits float64 `json:"credits"`
	}]
	if err := json.Unmarshal(body, &decoded); err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "auphonic", "credits", "decode response", err)
	}
	return decoded.Data.Credits, nil
}

// Download opens a result file. The token travels as the bearer_token query
// parameter. Callers must close the returned reader. The configured timeout
// bounds the wait for headers and any pause in the body, not the whole file.
func (c *Client) Download(ctx context.Context, downloadURL string) (io.ReadCloser, error) {
	endpoint, err := url.Parse(strings.TrimSpace(downloadURL))
	if err != nil || endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, services.Wrap(services.ErrValidation, "auphonic", "download", fmt.Sprintf("invalid download url %q", downloadURL), err)
	}
	query := endpoint.Query()
	query.Set("bearer_token", c.token)
	endpoint.RawQuery = query.Encode()

	guard := newStallGuard(ctx, c.timeout)
	req, err := http.NewRequestWithContext(guard.Context(), http.MethodGet, endpoint.String(), nil)
	if err != nil {
		guard.release()
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.transfer.Do(req)
	if err != nil {
		err = guard.explain(err)
		guard.release()
		return nil, services.Wrap(services.ErrExternalTool, "auphonic", "download", "request failed", err)
	}
	if !success(resp.StatusCode) {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		guard.release()
		return nil, services.Wrap(services.ErrExternalTool, "auphonic", "download", fmt.Sprintf("status %d: %s", resp.StatusCode, snippet(string(body))), nil)
	}
	guard.touch()
	return &guardedBody{progressReader: progressReader{r: resp.Body, guard: guard}, body: resp.Body}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any) (*http.Response, []byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(c.api, req, nil)
}

func (c *Client) do(client *http.Client, req *http.Request, guard *stallGuard) (*http.Response, []byte, error) {
	requestStart := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(requestStart)
	if guard != nil {
		err = guard.explain(err)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, fmt.Errorf("%w: %s %s (latency=%v): %w", services.ErrTimeout, req.Method, req.URL.Path, latency, err)
		}
		return nil, nil, fmt.Errorf("execute %s %s (latency=%v): %w", req.Method, req.URL.Path, latency, err)
	}
	defer resp.Body.Close()
	var reader io.Reader = resp.Body
	if guard != nil {
		guard.touch()
		reader = &progressReader{r: resp.Body, guard: guard}
	}
	body, err := io.ReadAll(io.LimitReader(reader, 1<<20))
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}
	return resp, body, nil
}

func productionPath(jobID, suffix string) string {
	return "/production/" + url.PathEscape(jobID) + suffix
}

func success(status int) bool {
	return status >= 200 && status < 300
}
