package entrez

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultBaseURL is the NCBI E-utilities endpoint.
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// DefaultTool is the tool name sent with every request, as the
	// E-utilities usage policy asks for.
	DefaultTool = "strainkit"

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 30 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	// Nucleotide records can be large, but a cap keeps a misbehaving
	// server from exhausting memory.
	maxResponseBytes = 1 << 30
)

// Client retrieves nucleotide records from the E-utilities EFetch endpoint.
type Client struct {
	// baseURL is the E-utilities endpoint. Overridable for tests.
	baseURL string

	// tool identifies this client to NCBI.
	tool string

	// email is the contact address sent with requests. Empty omits the
	// parameter.
	email string

	// apiKey is the NCBI API key. Empty omits the parameter.
	apiKey string

	// httpClient performs the requests.
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the E-utilities endpoint.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithEmail sets the contact email sent with every request.
func WithEmail(email string) ClientOption {
	return func(c *Client) {
		c.email = email
	}
}

// WithAPIKey sets the NCBI API key sent with every request.
func WithAPIKey(apiKey string) ClientOption {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates an EFetch client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		tool:    DefaultTool,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves one nucleotide record as FASTA text.
func (c *Client) Fetch(ctx context.Context, accession string) ([]byte, error) {
	if accession == "" {
		return nil, ErrEmptyAccession
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.fetchURL(accession), nil)
	if err != nil {
		return nil, fmt.Errorf("efetch %s: %w", accession, err)
	}
	req.Header.Set("User-Agent", c.tool)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("efetch %s: %w", accession, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Accession: accession, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("efetch %s: read body: %w", accession, err)
	}

	// The E-utilities report some failures as plain text with status 200.
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '>' {
		return nil, fmt.Errorf("efetch %s: %w", accession, ErrInvalidResponse)
	}
	return body, nil
}

// fetchURL builds the EFetch URL for a nucleotide accession.
func (c *Client) fetchURL(accession string) string {
	params := url.Values{}
	params.Set("db", "nucleotide")
	params.Set("id", accession)
	params.Set("rettype", "fasta")
	params.Set("retmode", "text")
	params.Set("tool", c.tool)
	if c.email != "" {
		params.Set("email", c.email)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	return c.baseURL + "/efetch.fcgi?" + params.Encode()
}
