package distribution

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

type jobState int

const (
	statePolling jobState = iota
	stateReady
	stateFailed
)

type jobStatus struct {
	state   jobState
	message string
	result  UploadResult
}

// Wait polls the job at a constant interval until it is ready, the service
// reports a failure, or the poll budget is spent.
func (c *Client) Wait(ctx context.Context, job string) (UploadResult, error) {
	pollCtx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	for attempt := 1; ; attempt++ {
		st, err := c.status(pollCtx, job)
		if err != nil {
			return UploadResult{}, c.pollError(ctx, pollCtx, attempt, err)
		}
		switch st.state {
		case stateReady:
			if st.result.Link == "" {
				return UploadResult{}, fmt.Errorf("%w: ready without link", ErrProcessingFailed)
			}
			return st.result, nil
		case stateFailed:
			return UploadResult{}, fmt.Errorf("%w: %s", ErrProcessingFailed, st.message)
		}
		if c.maxAttempts > 0 && attempt >= c.maxAttempts {
			return UploadResult{}, fmt.Errorf("%w: %d status checks", ErrNotReady, attempt)
		}
		if err := c.sleep(pollCtx, c.pollInterval); err != nil {
			return UploadResult{}, c.pollError(ctx, pollCtx, attempt, err)
		}
	}
}

// pollError separates caller cancellation from an exhausted poll timeout.
func (c *Client) pollError(parent, pollCtx context.Context, attempt int, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(pollCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: timeout %s after %d status checks", ErrNotReady, c.pollTimeout, attempt)
	}
	return err
}

func (c *Client) status(ctx context.Context, job string) (jobStatus, error) {
	u, err := url.Parse(c.statusURL)
	if err != nil {
		return jobStatus{}, fmt.Errorf("%w: %v", ErrStatusFailed, err)
	}
	q := u.Query()
	q.Set("token", c.token)
	q.Set("job", job)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return jobStatus{}, fmt.Errorf("%w: %v", ErrStatusFailed, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return jobStatus{}, fmt.Errorf("%w: %v", ErrStatusFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return jobStatus{}, fmt.Errorf("%w: status %d", ErrStatusFailed, resp.StatusCode)
	}
	data, err := decodeJSON(resp.Body)
	if err != nil {
		return jobStatus{}, fmt.Errorf("%w: decode response: %v", ErrStatusFailed, err)
	}
	return c.classify(data), nil
}

func (c *Client) classify(data any) jobStatus {
	msg := lookupString(c.fields.Message, data)
	if msg == c.fields.ReadyValue {
		return jobStatus{
			state:   stateReady,
			message: msg,
			result: UploadResult{
				Link:   lookupString(c.fields.Link, data),
				QRCode: lookupString(c.fields.QRCode, data),
			},
		}
	}
	if c.fields.FailedValue != "" && lookupString(c.fields.Status, data) == c.fields.FailedValue {
		if msg == "" {
			msg = "service reported an error"
		}
		return jobStatus{state: stateFailed, message: msg}
	}
	return jobStatus{state: statePolling, message: msg}
}
