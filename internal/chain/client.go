package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"curveScope/internal/model"
)

// ErrNotFound is returned when the node has no record for the request.
var ErrNotFound = errors.New("not found")

// Options configures a Client.
type Options struct {
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client reads transactions from an Aptos fullnode REST API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// NewClient builds a client for a node URL such as https://fullnode.mainnet.aptoslabs.com/v1.
func NewClient(nodeURL string, opts Options) (*Client, error) {
	if strings.TrimSpace(nodeURL) == "" {
		return nil, fmt.Errorf("node url is required")
	}
	base, err := url.Parse(strings.TrimRight(nodeURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse node url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("node url must be http or https: %s", nodeURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{baseURL: base, http: client}, nil
}

// Transactions returns up to limit transactions starting at version start, in ledger order.
func (c *Client) Transactions(ctx context.Context, start uint64, limit int) ([]model.Transaction, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	query := url.Values{}
	query.Set("start", strconv.FormatUint(start, 10))
	query.Set("limit", strconv.Itoa(limit))

	var wire []wireTransaction
	if err := c.get(ctx, "/transactions", query, &wire); err != nil {
		return nil, err
	}
	out := make([]model.Transaction, 0, len(wire))
	for _, w := range wire {
		tx, err := w.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// LedgerVersion returns the current head version.
func (c *Client) LedgerVersion(ctx context.Context) (uint64, error) {
	var info struct {
		LedgerVersion string `json:"ledger_version"`
	}
	if err := c.get(ctx, "/", nil, &info); err != nil {
		return 0, err
	}
	version, err := strconv.ParseUint(info.LedgerVersion, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse ledger_version %q: %w", info.LedgerVersion, err)
	}
	return version, nil
}

// TransactionByHash fetches one committed transaction.
func (c *Client) TransactionByHash(ctx context.Context, hash string) (model.Transaction, error) {
	if hash == "" {
		return model.Transaction{}, fmt.Errorf("hash is required")
	}
	var wire wireTransaction
	if err := c.get(ctx, "/transactions/by_hash/"+url.PathEscape(hash), nil, &wire); err != nil {
		return model.Transaction{}, err
	}
	if wire.Type == "pending_transaction" {
		return model.Transaction{}, fmt.Errorf("transaction %s is pending: %w", hash, ErrNotFound)
	}
	return wire.toModel()
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	target := *c.baseURL
	target.Path = strings.TrimRight(target.Path, "/") + path
	if query != nil {
		target.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("GET %s: %w", path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Path: path, Code: resp.StatusCode, Message: nodeMessage(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// StatusError is a non-2xx answer from the node.
type StatusError struct {
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: http %d: %s", e.Path, e.Code, e.Message)
}

// Temporary reports whether retrying later may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

func nodeMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(body))
}
