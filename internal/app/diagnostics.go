package app

import (
	"context"

	"github.com/bft-labs/walletscope/internal/domain"
	"github.com/bft-labs/walletscope/internal/ports"
)

// PathLogSDK is the diagnostics endpoint.
const PathLogSDK = "/log-sdk"

type logPayload struct {
	LogLevel domain.LogLevel `json:"logLevel"`
	Data     logData         `json:"data"`
}

type logData struct {
	IdentityID string `json:"identityId"`
	Msg        string `json:"msg"`
	APIKey     string `json:"apiKey"`
	URL        string `json:"url"`
}

// Reporter sends SDK diagnostics to the collector. It never fails: a
// report that cannot be delivered is only logged.
type Reporter struct {
	poster     ports.Poster
	window     ports.Window
	baseURL    string
	apiKey     string
	identityID string
	logger     ports.Logger
	metrics    *Metrics
}

// NewReporter creates a diagnostics reporter for one identity.
func NewReporter(poster ports.Poster, window ports.Window, baseURL, apiKey, identityID string, logger ports.Logger, metrics *Metrics) *Reporter {
	return &Reporter{
		poster:     poster,
		window:     window,
		baseURL:    baseURL,
		apiKey:     apiKey,
		identityID: identityID,
		logger:     logger,
		metrics:    metrics,
	}
}

// Report posts msg at level. A non-nil err is appended to the message.
func (r *Reporter) Report(ctx context.Context, level domain.LogLevel, msg string, err error) {
	if err != nil {
		msg = msg + ": " + err.Error()
	}

	if level == domain.LogLevelError {
		r.logger.Error(msg)
	} else {
		r.logger.Warn(msg)
	}
	r.metrics.DiagnosticReported(level)

	payload := logPayload{
		LogLevel: level,
		Data: logData{
			IdentityID: r.identityID,
			Msg:        msg,
			APIKey:     r.apiKey,
			URL:        r.window.Href(),
		},
	}
	if _, postErr := r.poster.Post(ctx, r.baseURL, r.apiKey, PathLogSDK, payload); postErr != nil {
		r.logger.Warn("diagnostic report not delivered", ports.Err(postErr))
	}
}
