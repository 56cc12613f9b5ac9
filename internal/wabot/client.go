// Package wabot talks to the external device-session service (the
// whatsapp bot process). Access goes through the DeviceRegistry
// capability interface so the deletion saga can be tested against a
// fake.
package wabot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/juliog922/chatlink-v2/internal/domain"
	"github.com/juliog922/chatlink-v2/pkg/logger"
)

type DeviceRegistry interface {
	ListDevices(ctx context.Context, authToken string) ([]domain.Device, error)
	DeleteDevice(ctx context.Context, jid, authToken string) error
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{baseURL: baseURL, client: client}
}

type devicesResponse struct {
	Devices []domain.Device `json:"devices"`
}

// ListDevices fetches the remote device list, forwarding the caller's
// shared-secret credential verbatim. A transport failure is an error;
// a non-success status or an unparsable body degrades to an empty list
// so the caller can proceed as if no devices were known.
func (c *Client) ListDevices(ctx context.Context, authToken string) ([]domain.Device, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/devices", nil)
	if err != nil {
		return nil, fmt.Errorf("build devices request: %w", err)
	}
	if authToken != "" {
		req.Header.Set("X-Auth", authToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: list devices: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.WarnContext(ctx, "device list returned non-success status; treating as empty",
			"status", resp.StatusCode)
		return []domain.Device{}, nil
	}

	var body devicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		logger.WarnContext(ctx, "device list body unparsable; treating as empty", "error", err)
		return []domain.Device{}, nil
	}

	return body.Devices, nil
}

// DeleteDevice removes one remote session. A non-success status is a
// hard failure here, unlike the list case.
func (c *Client) DeleteDevice(ctx context.Context, jid, authToken string) error {
	u := c.baseURL + "/devices/" + url.PathEscape(jid)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	if authToken != "" {
		req.Header.Set("X-Auth", authToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: delete device: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.UpstreamRejectedError{Status: resp.StatusCode}
	}

	return nil
}

// ForwardResult carries a relayed upstream response.
type ForwardResult struct {
	Status      int
	ContentType string
	Body        []byte
}

// ForwardLoginQR relays a QR-login trigger to the bot, passing the
// credential and body through and returning whatever came back.
func (c *Client) ForwardLoginQR(ctx context.Context, to, authToken string) (*ForwardResult, error) {
	payload, err := json.Marshal(map[string]string{"to": to})
	if err != nil {
		return nil, fmt.Errorf("marshal loginqr body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/loginqr", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build loginqr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("X-Auth", authToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: forward loginqr: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read loginqr response: %v", domain.ErrUpstreamUnavailable, err)
	}

	return &ForwardResult{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
