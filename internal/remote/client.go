package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wanzo-portfolio/internal/domain/disbursement"
	"wanzo-portfolio/internal/domain/leasing"
	"wanzo-portfolio/internal/domain/syncqueue"
)

// Client talks to the remote system of record. The API is a black box with a
// stable request/response contract; every caller must tolerate arbitrary
// rejection and fall back locally.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewClientWithHTTPClient is used by tests to point at an httptest server.
func NewClientWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: baseURL, httpClient: hc}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("remote API %s %s: status %d: %s", method, path, resp.StatusCode, payload)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// --- disbursements (traditional portfolios) ---

func (c *Client) CreateDisbursement(ctx context.Context, d *disbursement.Disbursement) (*disbursement.Disbursement, error) {
	var out disbursement.Disbursement
	if err := c.do(ctx, http.MethodPost, "/portfolios/traditional/disbursements", d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateDisbursement(ctx context.Context, d *disbursement.Disbursement) (*disbursement.Disbursement, error) {
	var out disbursement.Disbursement
	path := "/portfolios/traditional/disbursements/" + d.ID
	if err := c.do(ctx, http.MethodPut, path, d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ConfirmDisbursement(ctx context.Context, id string, conf disbursement.Confirmation) (*disbursement.Disbursement, error) {
	var out disbursement.Disbursement
	path := "/portfolios/traditional/disbursements/" + id + "/confirm"
	if err := c.do(ctx, http.MethodPost, path, conf, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelDisbursement(ctx context.Context, id string) error {
	path := "/portfolios/traditional/disbursements/" + id
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// --- leasing requests and contracts ---

func (c *Client) CreateLeasingRequest(ctx context.Context, r *leasing.Request) (*leasing.Request, error) {
	var out leasing.Request
	if err := c.do(ctx, http.MethodPost, "/portfolios/leasing/requests", r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ApproveLeasingRequest(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/portfolios/leasing/requests/"+id+"/approve", nil, nil)
}

func (c *Client) RejectLeasingRequest(ctx context.Context, id, reason string) error {
	body := map[string]string{"reason": reason}
	return c.do(ctx, http.MethodPost, "/portfolios/leasing/requests/"+id+"/reject", body, nil)
}

func (c *Client) CreateLeasingContract(ctx context.Context, ct *leasing.Contract) (*leasing.Contract, error) {
	var out leasing.Contract
	if err := c.do(ctx, http.MethodPost, "/portfolios/leasing/contracts", ct, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateLeasingContract(ctx context.Context, ct *leasing.Contract) (*leasing.Contract, error) {
	var out leasing.Contract
	if err := c.do(ctx, http.MethodPut, "/portfolios/leasing/contracts/"+ct.ID, ct, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- sync outbox ---

// PushMutation replays one queued local mutation against the remote API.
func (c *Client) PushMutation(ctx context.Context, item syncqueue.Item) error {
	return c.do(ctx, http.MethodPost, "/sync/mutations", item, nil)
}
