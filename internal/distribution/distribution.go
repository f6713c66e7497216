// Package distribution uploads a release artifact to a Diawi-compatible
// distribution service and waits for the asynchronous processing job to
// produce a shareable link and QR code.
package distribution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
)

const (
	DefaultUploadURL    = "https://upload.diawi.com"
	DefaultStatusURL    = "https://upload.diawi.com/status"
	DefaultPollInterval = time.Second
	DefaultPollTimeout  = 10 * time.Minute
)

var (
	// ErrUploadRejected covers transport failures and non-2xx upload replies.
	ErrUploadRejected = errors.New("upload rejected")
	// ErrNoJob means the upload reply carried no job identifier.
	ErrNoJob = errors.New("upload response has no job id")
	// ErrStatusFailed means a status poll request itself failed.
	ErrStatusFailed = errors.New("status request failed")
	// ErrProcessingFailed means the service reported the job as failed.
	ErrProcessingFailed = errors.New("processing failed")
	// ErrNotReady means the poll budget ran out before the job was ready.
	ErrNotReady = errors.New("upload never became ready")
)

// Fields holds the JMESPath expressions used to read service replies.
type Fields struct {
	Job         string
	Message     string
	ReadyValue  string
	Status      string
	FailedValue string
	Link        string
	QRCode      string
}

// DefaultFields matches the Diawi upload and status API.
func DefaultFields() Fields {
	return Fields{
		Job:         "job",
		Message:     "message",
		ReadyValue:  "Ok",
		Status:      "status",
		FailedValue: "4000",
		Link:        "link",
		QRCode:      "qrcode",
	}
}

// ProgressFunc receives the number of artifact bytes sent so far and the
// artifact size.
type ProgressFunc func(sent, total int64)

// Config configures a Client.
type Config struct {
	UploadURL    string
	StatusURL    string
	Token        string
	PollInterval time.Duration
	PollTimeout  time.Duration
	// MaxAttempts bounds the number of status requests; zero means only the
	// timeout applies.
	MaxAttempts int
	Fields      Fields
	HTTPClient  *http.Client
	Progress    ProgressFunc
}

// UploadResult is the shareable outcome of a finished upload.
type UploadResult struct {
	Link   string `json:"link" yaml:"link"`
	QRCode string `json:"qrcode" yaml:"qrcode"`
}

// Client talks to the distribution service.
type Client struct {
	uploadURL    string
	statusURL    string
	token        string
	pollInterval time.Duration
	pollTimeout  time.Duration
	maxAttempts  int
	fields       Fields
	client       *http.Client
	progress     ProgressFunc
	sleep        func(ctx context.Context, d time.Duration) error
}

// NewClient validates cfg and applies defaults.
func NewClient(cfg Config) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("distribution token is required")
	}
	fields := cfg.Fields
	if fields == (Fields{}) {
		fields = DefaultFields()
	}
	for _, expr := range []string{fields.Job, fields.Message, fields.Link, fields.QRCode} {
		if strings.TrimSpace(expr) == "" {
			return nil, errors.New("distribution response field expressions are required")
		}
		if _, err := jmespath.Compile(expr); err != nil {
			return nil, fmt.Errorf("invalid response field %q: %w", expr, err)
		}
	}
	if fields.Status != "" {
		if _, err := jmespath.Compile(fields.Status); err != nil {
			return nil, fmt.Errorf("invalid response field %q: %w", fields.Status, err)
		}
	}
	if cfg.MaxAttempts < 0 {
		return nil, errors.New("max attempts must not be negative")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	c := &Client{
		uploadURL:    fallback(cfg.UploadURL, DefaultUploadURL),
		statusURL:    fallback(cfg.StatusURL, DefaultStatusURL),
		token:        token,
		pollInterval: cfg.PollInterval,
		pollTimeout:  cfg.PollTimeout,
		maxAttempts:  cfg.MaxAttempts,
		fields:       fields,
		client:       hc,
		progress:     cfg.Progress,
		sleep:        sleepContext,
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	if c.pollTimeout <= 0 {
		c.pollTimeout = DefaultPollTimeout
	}
	return c, nil
}

// Upload submits the artifact at path and waits until it is ready.
func (c *Client) Upload(ctx context.Context, path string) (UploadResult, error) {
	job, err := c.Submit(ctx, path)
	if err != nil {
		return UploadResult{}, err
	}
	return c.Wait(ctx, job)
}

func fallback(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func decodeJSON(r io.Reader) (any, error) {
	var v any
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// lookupString evaluates expr against data and renders scalars as strings.
// Missing values and null yield "".
func lookupString(expr string, data any) string {
	if expr == "" {
		return ""
	}
	v, err := jmespath.Search(expr, data)
	if err != nil || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return fmt.Sprintf("%.0f", x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(x)
	}
}
