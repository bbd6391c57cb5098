package funnelwire

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RawResponse is what the transport hands back: status plus the unparsed
// body. Classification happens elsewhere.
type RawResponse struct {
	Status int
	Body   []byte
}

// Transport posts one payload to one action endpoint. The core never
// performs I/O directly; retries, signing, and timeouts live behind this
// interface.
type Transport interface {
	Post(ctx context.Context, action string, payload any) (*RawResponse, error)
}

const defaultHTTPTimeout = 30 * time.Second

// HTTPTransport is the default Transport: JSON over POST to a single API
// endpoint with the action named in the query string.
type HTTPTransport struct {
	Endpoint string
	Client   *http.Client
}

func NewHTTPTransport(endpoint string) *HTTPTransport {
	return &HTTPTransport{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: defaultHTTPTimeout},
	}
}

func (t *HTTPTransport) Post(ctx context.Context, action string, payload any) (*RawResponse, error) {
	bs, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s?action=%s", t.Endpoint, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(bs))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Content-Type", "application/json")

	res, err := t.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	return &RawResponse{Status: res.StatusCode, Body: body}, nil
}
