package entityindex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bcnelson/maintenance-window-manager/internal/domain"
)

// Options configures the REST client.
type Options struct {
	BaseURL       string
	APIToken      string
	Timeout       time.Duration
	RetryCount    int
	RetryWaitTime time.Duration
}

// Client is the REST implementation of Index.
type Client struct {
	http    *resty.Client
	baseURL string
}

// Ensure Client implements Index.
var _ Index = (*Client)(nil)

// errorEnvelope is the error body shape returned by the index.
type errorEnvelope struct {
	Error *APIError `json:"error"`
}

// createResult is one element of the settings create response.
type createResult struct {
	Code     int       `json:"code"`
	ObjectID string    `json:"objectId"`
	Error    *APIError `json:"error,omitempty"`
}

// New creates a REST client for the index at opts.BaseURL.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryWaitTime <= 0 {
		opts.RetryWaitTime = time.Second
	}

	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWaitTime).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	if opts.APIToken != "" {
		client.SetHeader("Authorization", "Api-Token "+opts.APIToken)
	}

	return &Client{http: client, baseURL: baseURL}
}

// QueryEntities fetches one page of entities. When a page key is set the
// index rejects any other parameter, so only the key is sent.
func (c *Client) QueryEntities(ctx context.Context, q EntityQuery) (*EntityPage, error) {
	params := map[string]string{}
	if q.NextPageKey != "" {
		params["nextPageKey"] = q.NextPageKey
	} else {
		params["entitySelector"] = q.Selector
		if q.From != "" {
			params["from"] = q.From
		}
		if q.PageSize > 0 {
			params["pageSize"] = strconv.Itoa(q.PageSize)
		}
	}

	var page EntityPage
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&page).
		SetError(&errorEnvelope{}).
		Get("/api/v2/entities")
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}

	return &page, nil
}

// QueryEntityTypes lists the entity types known to the index, following pages.
func (c *Client) QueryEntityTypes(ctx context.Context, pageSize int) ([]EntityTypeRecord, error) {
	var types []EntityTypeRecord
	nextPageKey := ""

	for {
		params := map[string]string{}
		if nextPageKey != "" {
			params["nextPageKey"] = nextPageKey
		} else if pageSize > 0 {
			params["pageSize"] = strconv.Itoa(pageSize)
		}

		var page struct {
			Types       []EntityTypeRecord `json:"types"`
			NextPageKey string             `json:"nextPageKey"`
		}
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(params).
			SetResult(&page).
			SetError(&errorEnvelope{}).
			Get("/api/v2/entityTypes")
		if err != nil {
			return nil, fmt.Errorf("querying entity types: %w", err)
		}
		if err := checkResponse(resp); err != nil {
			return nil, fmt.Errorf("querying entity types: %w", err)
		}

		types = append(types, page.Types...)
		if page.NextPageKey == "" {
			return types, nil
		}
		nextPageKey = page.NextPageKey
	}
}

// ListSettingsObjects fetches one page of settings objects for a schema.
func (c *Client) ListSettingsObjects(ctx context.Context, q SettingsQuery) (*SettingsPage, error) {
	params := map[string]string{}
	if q.NextPageKey != "" {
		params["nextPageKey"] = q.NextPageKey
	} else {
		params["schemaIds"] = q.SchemaID
		if q.PageSize > 0 {
			params["pageSize"] = strconv.Itoa(q.PageSize)
		}
		if q.Fields != "" {
			params["fields"] = q.Fields
		}
	}

	var page SettingsPage
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&page).
		SetError(&errorEnvelope{}).
		Get("/api/v2/settings/objects")
	if err != nil {
		return nil, fmt.Errorf("listing settings objects: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, fmt.Errorf("listing settings objects: %w", err)
	}

	return &page, nil
}

// CreateSettingsObject creates one settings object and returns its ID.
func (c *Client) CreateSettingsObject(ctx context.Context, obj SettingsObjectCreate) (string, error) {
	var results []createResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody([]SettingsObjectCreate{obj}).
		SetResult(&results).
		Post("/api/v2/settings/objects")
	if err != nil {
		return "", fmt.Errorf("creating settings object: %w", err)
	}

	if resp.IsError() {
		// Validation failures come back as the same array with per-item errors.
		if first := firstCreateError(resp); first != nil {
			return "", fmt.Errorf("creating settings object: %w", first)
		}
		return "", fmt.Errorf("creating settings object: %w", responseError(resp, nil))
	}

	if len(results) == 0 || results[0].ObjectID == "" {
		return "", fmt.Errorf("creating settings object: index returned no object id")
	}
	return results[0].ObjectID, nil
}

// DeleteSettingsObject deletes a settings object by ID.
func (c *Client) DeleteSettingsObject(ctx context.Context, objectID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("objectId", objectID).
		SetError(&errorEnvelope{}).
		Delete("/api/v2/settings/objects/{objectId}")
	if err != nil {
		return fmt.Errorf("deleting settings object %s: %w", objectID, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("settings object %s: %w", objectID, domain.ErrNotFound)
	}
	if err := checkResponse(resp); err != nil {
		return fmt.Errorf("deleting settings object %s: %w", objectID, err)
	}
	return nil
}

func checkResponse(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	env, _ := resp.Error().(*errorEnvelope)
	return responseError(resp, env)
}

func responseError(resp *resty.Response, env *errorEnvelope) *APIError {
	if env != nil && env.Error != nil && env.Error.Message != "" {
		return &APIError{StatusCode: resp.StatusCode(), Message: env.Error.Message}
	}
	msg := strings.TrimSpace(resp.String())
	if msg == "" {
		msg = resp.Status()
	}
	return &APIError{StatusCode: resp.StatusCode(), Message: msg}
}

func firstCreateError(resp *resty.Response) *APIError {
	var results []createResult
	if err := json.Unmarshal(resp.Body(), &results); err != nil {
		return nil
	}
	for _, r := range results {
		if r.Error != nil {
			if r.Error.StatusCode == 0 {
				r.Error.StatusCode = resp.StatusCode()
			}
			return r.Error
		}
	}
	return nil
}
