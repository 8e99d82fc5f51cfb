package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

// DefaultTimeout is the per-request timeout.
const DefaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. "http://localhost:8000".
	BaseURL string

	// Timeout is the per-request timeout. Zero uses DefaultTimeout.
	Timeout time.Duration

	// RatePerSecond throttles requests. Zero uses DefaultRatePerSecond.
	RatePerSecond float64

	// Transport is the underlying round tripper. Nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

// Client is the remote backend.
//
// Client instances are safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     driven.TokenProvider
	limiter    *RateLimiter
}

var (
	_ driven.Backend        = (*Client)(nil)
	_ driven.WorkspaceStore = (*Client)(nil)
)

// NewClient creates a remote client that authenticates with tokens.
func NewClient(opts Options, tokens driven.TokenProvider) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RatePerSecond == 0 {
		opts.RatePerSecond = DefaultRatePerSecond
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &oauth2.Transport{
				Source: NewTokenSource(tokens),
				Base:   base,
			},
		},
		tokens:  tokens,
		limiter: NewRateLimiter(opts.RatePerSecond),
	}
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Kind reports the remote storage kind.
func (c *Client) Kind() domain.StorageKind {
	return domain.StorageRemote
}

func (c *Client) Profiles() driven.ProfileStore                   { return profileStore{c} }
func (c *Client) ProfilePoints() driven.ProfilePointStore         { return pointStore{c} }
func (c *Client) Datasets() driven.DatasetStore                   { return datasetStore{c} }
func (c *Client) Texts() driven.TextStore                         { return textStore{c} }
func (c *Client) AnnotatedDatasets() driven.AnnotatedDatasetStore { return annotatedDatasetStore{c} }
func (c *Client) AnnotatedTexts() driven.AnnotatedTextStore       { return annotatedTextStore{c} }
func (c *Client) DataPoints() driven.DataPointStore               { return dataPointStore{c} }
func (c *Client) Settings() driven.SettingsStore                  { return settingsStore{c} }

// do performs one authenticated JSON request. The token is checked before
// anything touches the network.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return opError(op, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err))
	}
	if token == "" {
		return opError(op, domain.ErrUnauthenticated)
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshalling request body: %w", op, err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return transportFailure(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportFailure(op, err)
	}
	defer resp.Body.Close()
	c.limiter.Observe(resp)

	if resp.StatusCode >= 400 {
		return statusFailure(op, resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return transportFailure(op, fmt.Errorf("decoding response: %w", err))
		}
	}
	return nil
}

func withWorkspace(path, workspaceID string) string {
	if workspaceID == "" {
		return path
	}
	return path + "?workspace_id=" + url.QueryEscape(workspaceID)
}

func escape(id string) string {
	return url.PathEscape(id)
}

// ==================== Workspaces ====================

// Create creates a remote workspace.
func (c *Client) Create(ctx context.Context, ws domain.Workspace) (*domain.Workspace, error) {
	ws.StorageKind = domain.StorageRemote
	var rec WorkspaceRecord
	if err := c.do(ctx, "create workspace", http.MethodPost, "/data/workspaces", WorkspaceToRemote(ws), &rec); err != nil {
		return nil, err
	}
	out := WorkspaceToLocal(rec)
	return &out, nil
}

// Get retrieves a remote workspace.
func (c *Client) Get(ctx context.Context, id string) (*domain.Workspace, error) {
	var rec WorkspaceRecord
	if err := c.do(ctx, "get workspace", http.MethodGet, "/data/workspaces/"+escape(id), nil, &rec); err != nil {
		return nil, err
	}
	out := WorkspaceToLocal(rec)
	return &out, nil
}

// List returns the caller's remote workspaces.
func (c *Client) List(ctx context.Context) ([]domain.Workspace, error) {
	var recs []WorkspaceRecord
	if err := c.do(ctx, "list workspaces", http.MethodGet, "/data/workspaces", nil, &recs); err != nil {
		return nil, err
	}
	out := make([]domain.Workspace, 0, len(recs))
	for _, r := range recs {
		out = append(out, WorkspaceToLocal(r))
	}
	return out, nil
}

// Update replaces a remote workspace's name and description.
func (c *Client) Update(ctx context.Context, ws domain.Workspace) error {
	ws.StorageKind = domain.StorageRemote
	return c.do(ctx, "update workspace", http.MethodPut, "/data/workspaces/"+escape(ws.ID), WorkspaceToRemote(ws), nil)
}

// Delete removes a remote workspace.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete workspace", http.MethodDelete, "/data/workspaces/"+escape(id), nil, nil)
}

// ==================== Profiles ====================

type profileStore struct{ c *Client }

func (s profileStore) Create(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	var rec ProfileRecord
	body := ProfileToRemote(p, p.WorkspaceID)
	body.ID = ""
	if err := s.c.do(ctx, "create profile", http.MethodPost, "/data/profiles", body, &rec); err != nil {
		return nil, err
	}
	out := ProfileToLocal(rec)
	return &out, nil
}

func (s profileStore) Get(ctx context.Context, id string) (*domain.Profile, error) {
	var rec ProfileRecord
	if err := s.c.do(ctx, "get profile", http.MethodGet, "/data/profiles/"+escape(id), nil, &rec); err != nil {
		return nil, err
	}
	out := ProfileToLocal(rec)
	return &out, nil
}

// List fetches the workspace's profiles; the mode filter is applied client-side.
func (s profileStore) List(ctx context.Context, filter driven.ListFilter) ([]domain.Profile, error) {
	var recs []ProfileRecord
	path := withWorkspace("/data/profiles", filter.WorkspaceID)
	if err := s.c.do(ctx, "list profiles", http.MethodGet, path, nil, &recs); err != nil {
		return nil, err
	}
	out := make([]domain.Profile, 0, len(recs))
	for _, r := range recs {
		p := ProfileToLocal(r)
		if filter.Mode == "" || p.Mode == filter.Mode {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s profileStore) Update(ctx context.Context, p domain.Profile) error {
	return s.c.do(ctx, "update profile", http.MethodPut, "/data/profiles/"+escape(p.ID),
		ProfileToRemote(p, p.WorkspaceID), nil)
}

func (s profileStore) Delete(ctx context.Context, id string) error {
	return s.c.do(ctx, "delete profile", http.MethodDelete, "/data/profiles/"+escape(id), nil, nil)
}

// ==================== Profile Points ====================

type pointStore struct{ c *Client }

func (s pointStore) Create(ctx context.Context, p domain.ProfilePoint) (*domain.ProfilePoint, error) {
	var rec ProfilePointRecord
	body := PointToRemote(p)
	body.ID = ""
	if err := s.c.do(ctx, "create profile point", http.MethodPost, "/data/profile-points", body, &rec); err != nil {
		return nil, err
	}
	out := PointToLocal(rec)
	return &out, nil
}

func (s pointStore) Get(ctx context.Context, id string) (*domain.ProfilePoint, error) {
	var rec ProfilePointRecord
	if err := s.c.do(ctx, "get profile point", http.MethodGet, "/data/profile-points/"+escape(id), nil, &rec); err != nil {
		return nil, err
	}
	out := PointToLocal(rec)
	return &out, nil
}

func (s pointStore) ListByProfile(ctx context.Context, profileID string) ([]domain.ProfilePoint, error) {
	var recs []ProfilePointRecord
	path := "/data/profiles/" + escape(profileID) + "/points"
	if err := s.c.do(ctx, "list profile points", http.MethodGet, path, nil, &recs); err != nil {
		return nil, err
	}
	out := make([]domain.ProfilePoint, 0, len(recs))
	for _, r := range recs {
		out = append(out, PointToLocal(r))
	}
	domain.SortPointsByOrder(out)
	return out, nil
}

func (s pointStore) Update(ctx context.Context, p domain.ProfilePoint) error {
	return s.c.do(ctx, "update profile point", http.MethodPut, "/data/profile-points/"+escape(p.ID),
		PointToRemote(p), nil)
}

// UpdateBatch issues one PUT per point in order. The remote API has no batch
// endpoint, so a failure part way leaves earlier points updated.
func (s pointStore) UpdateBatch(ctx context.Context, points []domain.ProfilePoint) error {
	for _, p := range points {
		if err := s.Update(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (s pointStore) Delete(ctx context.Context, id string) error {
	return s.c.do(ctx, "delete profile point", http.MethodDelete, "/data/profile-points/"+escape(id), nil, nil)
}

// ==================== Datasets ====================

type datasetStore struct{ c *Client }

func (s datasetStore) Create(ctx context.Context, d domain.Dataset) (*domain.Dataset, error) {
	var rec DatasetRecord
	body := DatasetToRemote(d, d.WorkspaceID)
	body.ID = ""
	if err := s.c.do(ctx, "create dataset", http.MethodPost, "/data/datasets", body, &rec); err != nil {
		return nil, err
	}
	out := DatasetToLocal(rec)
	return &out, nil
}

func (s datasetStore) Get(ctx context.Context, id string) (*domain.Dataset, error) {
	var rec DatasetRecord
	if err := s.c.do(ctx, "get dataset", http.MethodGet, "/data/datasets/"+escape(id), nil, &rec); err != nil {
		return nil, err
	}
	out := DatasetToLocal(rec)
	return &out, nil
}

func (s datasetStore) List(ctx context.Context, filter driven.ListFilter) ([]domain.Dataset, error) {
	var recs []DatasetRecord
	path := withWorkspace("/data/datasets", filter.WorkspaceID)
	if err := s.c.do(ctx, "list datasets", http.MethodGet, path, nil, &recs); err != nil {
		return nil, err
	}
	out := make([]domain.Dataset, 0, len(recs))
	for _, r := range recs {
		d := DatasetToLocal(r)
		if filter.Mode == "" || d.Mode == filter.Mode {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s datasetStore) Update(ctx context.Context, d domain.Dataset) error {
	return s.c.do(ctx, "update dataset", http.MethodPut, "/data/datasets/"+escape(d.ID),
		DatasetToRemote(d, d.WorkspaceID), nil)
}

func (s datasetStore) Delete(ctx context.Context, id string) error {
	return s.c.do(ctx, "delete dataset", http.MethodDelete, "/data/datasets/"+escape(id), nil, nil)
}

// ==================== Texts ====================

type textStore struct{ c *Client }

func (s textStore) Create(ctx context.Context, t domain.Text) (*domain.Text, error) {
	var rec TextRecord
	body := TextToRemote(t)
	body.ID = ""
	if err := s.c.do(ctx, "create text", http.MethodPost, "/data/texts", body, &rec); err != nil {
		return nil, err
	}
	out := TextToLocal(rec)
	return &out, nil
}

func (s textStore) Get(ctx context.Context, id string) (*domain.Text, error) {
	var rec TextRecord
	if err := s.c.do(ctx, "get text", http.MethodGet, "/data/texts/"+escape(id), nil, &rec); err != nil {
		return nil, err
	}
	out := TextToLocal(rec)
	return &out, nil
}

func (s textStore) ListByDataset(ctx context.Context, datasetID string) ([]domain.Text, error) {
	var recs []TextRecord
	path := "/data/datasets/" + escape(datasetID) + "/texts"
	if err := s.c.do(ctx, "list texts", http.MethodGet, path, nil, &recs); err != nil {
		return nil, err
	}
	out := make([]domain.Text, 0, len(recs))
	for _, r := range recs {
		out = append(out, TextToLocal(r))
	}
	return out, nil
}

func (s textStore) Update(ctx context.Context, t domain.Text) error {
	return s.c.do(ctx, "update text", http.MethodPut, "/data/texts/"+escape(t.ID), TextToRemote(t), nil)
}

func (s textStore) Delete(ctx context.Context, id string) error {
	return s.c.do(ctx, "delete text", http.MethodDelete, "/data/texts/"+escape(id), nil, nil)
}

// ==================== Annotated Datasets ====================

type annotatedDatasetStore struct{ c *Client }

func (s annotatedDatasetStore) Create(ctx context.Context, ad domain.AnnotatedDataset) (*domain.AnnotatedDataset, error) {
	var rec AnnotatedDatasetRecord
	body := AnnotatedDatasetToRemote(ad, ad.WorkspaceID)
	body.ID = ""
	if err := s.c.do(ctx, "create annotated dataset", http.MethodPost, "/data/annotated-datasets", body, &rec); err != nil {
		return nil, err
	}
	out := AnnotatedDatasetToLocal(rec)
	return &out, nil
}

func (s annotatedDatasetStore) Get(ctx context.Context, id string) (*domain.AnnotatedDataset, error) {
	var rec AnnotatedDatasetRecord
	path := "/data/annotated-datasets/" + escape(id)
	if err := s.c.do(ctx, "get annotated dataset", http.MethodGet, path, nil, &rec); err != nil {
		return nil, err
	}
	out := AnnotatedDatasetToLocal(rec)
	return &out, nil
}

func (s annotatedDatasetStore) List(ctx context.Context, filter driven.ListFilter) ([]domain.AnnotatedDataset, error) {
	var recs []AnnotatedDatasetRecord
	path := withWorkspace("/data/annotated-datasets", filter.WorkspaceID)
	if err := s.c.do(ctx, "list annotated datasets", http.MethodGet, path, nil, &recs); err != nil {
		return nil, err
	}
	out := make([]domain.AnnotatedDataset, 0, len(recs))
	for _, r := range recs {
		ad := AnnotatedDatasetToLocal(r)
		if filter.Mode == "" || ad.Mode == filter.Mode {
			out = append(out, ad)
		}
	}
	return out, nil
}

func (s annotatedDatasetStore) Update(ctx context.Context, ad domain.AnnotatedDataset) error {
	return s.c.do(ctx, "update annotated dataset", http.MethodPut, "/data/annotated-datasets/"+escape(ad.ID),
		AnnotatedDatasetToRemote(ad, ad.WorkspaceID), nil)
}

func (s annotatedDatasetStore) Delete(ctx context.Context, id string) error {
	return s.c.do(ctx, "delete annotated dataset", http.MethodDelete, "/data/annotated-datasets/"+escape(id), nil, nil)
}

// ==================== Annotated Texts ====================

type annotatedTextStore struct{ c *Client }

func (s annotatedTextStore) Create(ctx context.Context, at domain.AnnotatedText) (*domain.AnnotatedText, error) {
	var rec AnnotatedTextRecord
	body := AnnotatedTextToRemote(at)
	body.ID = ""
	if err := s.c.do(ctx, "create annotated text", http.MethodPost, "/data/annotated-texts", body, &rec); err != nil {
		return nil, err
	}
	out := AnnotatedTextToLocal(rec)
	return &out, nil
}

func (s annotatedTextStore) Get(ctx context.Context, id string) (*domain.AnnotatedText, error) {
	var rec AnnotatedTextRecord
	if err := s.c.do(ctx, "get annotated text", http.MethodGet, "/data/annotated-texts/"+escape(id), nil, &rec); err != nil {
		return nil, err
	}
	out := AnnotatedTextToLocal(rec)
	return &out, nil
}

func (s annotatedTextStore) ListByAnnotatedDataset(ctx context.Context, adID string) ([]domain.AnnotatedText, error) {
	var recs []AnnotatedTextRecord
	path := "/data/annotated-datasets/" + escape(adID) + "/texts"
	if err := s.c.do(ctx, "list annotated texts", http.MethodGet, path, nil, &recs); err != nil {
		return nil, err
	}
	out := make([]domain.AnnotatedText, 0, len(recs))
	for _, r := range recs {
		out = append(out, AnnotatedTextToLocal(r))
	}
	return out, nil
}

func (s annotatedTextStore) Update(ctx context.Context, at domain.AnnotatedText) error {
	return s.c.do(ctx, "update annotated text", http.MethodPut, "/data/annotated-texts/"+escape(at.ID),
		AnnotatedTextToRemote(at), nil)
}

func (s annotatedTextStore) Delete(ctx context.Context, id string) error {
	return s.c.do(ctx, "delete annotated text", http.MethodDelete, "/data/annotated-texts/"+escape(id), nil, nil)
}

// ==================== Data Points ====================

type dataPointStore struct{ c *Client }

func (s dataPointStore) Create(ctx context.Context, dp domain.DataPoint) (*domain.DataPoint, error) {
	var rec DataPointRecord
	body := DataPointToRemote(dp)
	body.ID = ""
	if err := s.c.do(ctx, "create data point", http.MethodPost, "/data/data-points", body, &rec); err != nil {
		return nil, err
	}
	out := DataPointToLocal(rec)
	return &out, nil
}

func (s dataPointStore) Get(ctx context.Context, id string) (*domain.DataPoint, error) {
	var rec DataPointRecord
	if err := s.c.do(ctx, "get data point", http.MethodGet, "/data/data-points/"+escape(id), nil, &rec); err != nil {
		return nil, err
	}
	out := DataPointToLocal(rec)
	return &out, nil
}

func (s dataPointStore) ListByAnnotatedText(ctx context.Context, atID string) ([]domain.DataPoint, error) {
	var recs []DataPointRecord
	path := "/data/annotated-texts/" + escape(atID) + "/data-points"
	if err := s.c.do(ctx, "list data points", http.MethodGet, path, nil, &recs); err != nil {
		return nil, err
	}
	out := make([]domain.DataPoint, 0, len(recs))
	for _, r := range recs {
		out = append(out, DataPointToLocal(r))
	}
	return out, nil
}

func (s dataPointStore) Update(ctx context.Context, dp domain.DataPoint) error {
	return s.c.do(ctx, "update data point", http.MethodPut, "/data/data-points/"+escape(dp.ID),
		DataPointToRemote(dp), nil)
}

func (s dataPointStore) Delete(ctx context.Context, id string) error {
	return s.c.do(ctx, "delete data point", http.MethodDelete, "/data/data-points/"+escape(id), nil, nil)
}

// ==================== Settings ====================

type settingsStore struct{ c *Client }

func (s settingsStore) GetSettings(ctx context.Context) (*domain.UserSettings, error) {
	var rec SettingsRecord
	if err := s.c.do(ctx, "get settings", http.MethodGet, "/data/settings", nil, &rec); err != nil {
		if IsNotFound(err) {
			return &domain.UserSettings{}, nil
		}
		return nil, err
	}
	out := SettingsToLocal(rec)
	return &out, nil
}

func (s settingsStore) PutSettings(ctx context.Context, settings domain.UserSettings) error {
	return s.c.do(ctx, "update settings", http.MethodPut, "/data/settings", SettingsToRemote(settings), nil)
}

func (s settingsStore) GetLLMConfig(ctx context.Context) (*domain.LLMConfig, error) {
	var rec LLMConfigRecord
	if err := s.c.do(ctx, "get llm config", http.MethodGet, "/data/llm-config", nil, &rec); err != nil {
		if IsNotFound(err) {
			cfg := domain.DefaultLLMConfig()
			return &cfg, nil
		}
		return nil, err
	}
	out := LLMConfigToLocal(rec)
	return &out, nil
}

func (s settingsStore) PutLLMConfig(ctx context.Context, cfg domain.LLMConfig) error {
	return s.c.do(ctx, "update llm config", http.MethodPut, "/data/llm-config", LLMConfigToRemote(cfg), nil)
}
