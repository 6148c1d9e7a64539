package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/bft-labs/walletscope/internal/domain"
	"github.com/bft-labs/walletscope/internal/jsoncodec"
	"github.com/bft-labs/walletscope/internal/ports"
)

// Header names sent with every one-shot request.
const (
	HeaderAPIKey       = "x-api-key"
	HeaderSDKVersion   = "x-sdk-version"
	HeaderLibraryUsage = "x-library-usage"
)

// Poster implements ports.Poster using JSON over HTTP POST.
type Poster struct {
	client      ports.HTTPClient
	logger      ports.Logger
	sdkVersion  string
	libraryType string
}

// NewPoster creates a new HTTP poster.
func NewPoster(client ports.HTTPClient, logger ports.Logger, sdkVersion, libraryType string) *Poster {
	return &Poster{
		client:      client,
		logger:      logger,
		sdkVersion:  sdkVersion,
		libraryType: libraryType,
	}
}

// Post sends payload to baseURL+path and decodes the response body as a
// JSON string. A nil payload sends an empty body.
func (p *Poster) Post(ctx context.Context, baseURL, apiKey, path string, payload any) (string, error) {
	url := baseURL + path

	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := jsoncodec.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set(HeaderAPIKey, apiKey)
	req.Header.Set(HeaderSDKVersion, p.sdkVersion)
	if p.libraryType != "" {
		req.Header.Set(HeaderLibraryUsage, p.libraryType)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: post %s: %v", domain.ErrNetwork, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", domain.ErrNetwork, url, err)
	}

	if resp.StatusCode/100 != 2 {
		p.logger.Debug("collector rejected request",
			ports.String("url", url),
			ports.Int("status", resp.StatusCode),
			ports.String("body", string(respBody)),
		)
		return "", &domain.RequestError{URL: url, StatusCode: resp.StatusCode}
	}

	var out string
	if err := jsoncodec.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrParse, url, err)
	}
	return out, nil
}
