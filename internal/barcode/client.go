// Package barcode is the client for the external barcode rendering
// service. The pipeline treats the service as a pure function with a
// network failure mode: one synchronous request per row, no retries.
// Retry policy, if wanted, belongs to the caller.
package barcode

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"strings"
	"time"
)

// Supported symbology identifiers.
const (
	FormatEAN13   = "ean13"
	FormatCode128 = "code128"
	FormatGS1128  = "gs1-128"
	FormatQRCode  = "qrcode"
)

// DefaultTimeout bounds one barcode render call. On expiry the row fails
// like any other row-level error.
const DefaultTimeout = 15 * time.Second

// Request describes one barcode to render.
type Request struct {
	Text   string `json:"text"`
	Format string `json:"format"`
	Height int    `json:"height"` // bar height
	Width  int    `json:"width"`  // bar width multiplier
}

type response struct {
	Success bool   `json:"success"`
	DataURL string `json:"dataUrl"`
	Message string `json:"message"`
}

// Renderer renders a barcode to a raster image. The HTTP client
// implements it; tests substitute stubs.
type Renderer interface {
	Render(ctx context.Context, req Request) (image.Image, error)
}

// HTTPError carries a non-2xx response from the barcode service.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Client calls the barcode service over HTTP.
type Client struct {
	client   *http.Client
	endpoint string

	// ObserveHTTP, when set, receives the duration of each round trip.
	ObserveHTTP func(time.Duration)
}

// NewClient creates a barcode client. A zero timeout means DefaultTimeout.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
	}
}

// Render requests one barcode and decodes the returned PNG. Defaults:
// symbology ean13, bar height 50, width multiplier 2.
func (c *Client) Render(ctx context.Context, req Request) (image.Image, error) {
	if req.Text == "" {
		return nil, fmt.Errorf("barcode text is required")
	}
	if req.Format == "" {
		req.Format = FormatEAN13
	}
	if req.Height == 0 {
		req.Height = 50
	}
	if req.Width == 0 {
		req.Width = 2
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal error: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request error: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpStart := time.Now()
	resp, err := c.client.Do(httpReq)
	if c.ObserveHTTP != nil {
		c.ObserveHTTP(time.Since(httpStart))
	}
	if err != nil {
		return nil, fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 && resp.StatusCode != 201 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response error: %w", err)
	}
	if !body.Success || body.DataURL == "" {
		return nil, fmt.Errorf("barcode service refused %q: %s", req.Text, body.Message)
	}

	return DecodeDataURL(body.DataURL)
}

const pngDataURLPrefix = "data:image/png;base64,"

// DecodeDataURL decodes a base64 PNG data URL into an image.
func DecodeDataURL(dataURL string) (image.Image, error) {
	if !strings.HasPrefix(dataURL, pngDataURLPrefix) {
		return nil, fmt.Errorf("unexpected data URL format")
	}
	raw, err := base64.StdEncoding.DecodeString(dataURL[len(pngDataURLPrefix):])
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid PNG payload: %w", err)
	}
	return img, nil
}
