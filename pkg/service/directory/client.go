// Package directory implements the client for the external user-directory
// service, which maps a userId to organizational profile fields.
package directory

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/defmon-lab/argos/pkg/domain/interfaces"
	"github.com/defmon-lab/argos/pkg/domain/model"
	"github.com/defmon-lab/argos/pkg/domain/types"
)

// Client queries the directory service with one HTTP round trip per
// userId. The request URL is the configured base URL with the userId
// appended verbatim, so the base may end in a path segment or a query
// parameter.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises the client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (used by tests)
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-lookup timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates a directory client for the given base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ interfaces.DirectoryClient = (*Client)(nil)

// record is the directory's wire format for one profile.
type record struct {
	UserID         string `json:"userid"`
	CN             string `json:"cn"`
	Department     string `json:"department"`
	Title          string `json:"title"`
	EmployeeNumber string `json:"employeenumber"`
}

// bracketStripper removes the list brackets some directory deployments
// wrap around a single-record response.
var bracketStripper = strings.NewReplacer("[", "", "]", "")

// Lookup fetches the profile for one userId. The response must embed the
// requested userId; a record for any other subject is rejected so that a
// misconfigured or compromised directory endpoint cannot attach someone
// else's profile to this userId.
func (c *Client) Lookup(ctx context.Context, id types.UserID) (*model.UserProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+string(id), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build directory request", goerr.V("userId", id))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "directory request failed", goerr.V("userId", id))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected directory response status",
			goerr.V("userId", id), goerr.V("status", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read directory response", goerr.V("userId", id))
	}

	data := strings.TrimSpace(bracketStripper.Replace(string(body)))
	if data == "" {
		return nil, goerr.New("empty directory response", goerr.V("userId", id))
	}
	if !strings.Contains(data, `"userid":"`+string(id)+`"`) {
		return nil, goerr.New("directory returned a record for a different subject",
			goerr.V("userId", id))
	}

	var rec record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, goerr.Wrap(err, "failed to parse directory response", goerr.V("userId", id))
	}

	return &model.UserProfile{
		UserID:         id,
		Name:           rec.CN,
		Department:     rec.Department,
		Title:          rec.Title,
		EmployeeNumber: rec.EmployeeNumber,
	}, nil
}
