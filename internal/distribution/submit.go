package distribution

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// countingReader reports the running byte count of every read.
type countingReader struct {
	r     io.Reader
	sent  int64
	total int64
	fn    ProgressFunc
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.sent += int64(n)
		if c.fn != nil {
			c.fn(c.sent, c.total)
		}
	}
	return n, err
}

// Submit streams the artifact as a multipart upload and returns the job id.
func (c *Client) Submit(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadRejected, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return "", fmt.Errorf("%w: %v", ErrUploadRejected, err)
	}

	pr, pw := io.Pipe()
	defer func() { _ = pr.Close() }()
	mw := multipart.NewWriter(pw)
	go func() {
		defer func() { _ = f.Close() }()
		pw.CloseWithError(c.writeForm(mw, f, filepath.Base(path), st.Size()))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, pr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadRejected, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadRejected, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrUploadRejected, resp.StatusCode)
	}
	data, err := decodeJSON(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUploadRejected, err)
	}
	job := lookupString(c.fields.Job, data)
	if job == "" {
		return "", ErrNoJob
	}
	return job, nil
}

func (c *Client) writeForm(mw *multipart.Writer, f io.Reader, name string, size int64) error {
	for _, kv := range [][2]string{
		{"token", c.token},
		{"wall_of_apps", "0"},
		{"find_by_udid", "0"},
	} {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	src := &countingReader{r: f, total: size, fn: c.progress}
	if _, err := io.Copy(part, src); err != nil {
		return err
	}
	return mw.Close()
}
