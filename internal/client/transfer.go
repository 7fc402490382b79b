package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/martinsuchenak/campusctl/internal/model"
)

// ProgressFunc receives byte counts as a request body is sent
type ProgressFunc func(sent, total int64)

type progressReader struct {
	r     io.Reader
	sent  int64
	total int64
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.fn != nil {
			p.fn(p.sent, p.total)
		}
	}
	return n, err
}

// Upload sends a spreadsheet for validation. The file is tagged with
// department, which the backend may create.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader, department string, progress ProgressFunc) (*model.ValidationResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	if err := mw.WriteField("department", department); err != nil {
		return nil, fmt.Errorf("writing department field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing form: %w", err)
	}

	total := int64(buf.Len())
	body := &progressReader{r: &buf, total: total, fn: progress}

	resp, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/upload/upload",
		body:        body,
		length:      total,
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out model.ValidationResult
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Import commits a previously validated upload
func (c *Client) Import(ctx context.Context, req *model.ImportRequest) (*model.ImportResult, error) {
	var out model.ImportResult
	if err := c.sendJSON(ctx, http.MethodPost, "/upload/import", req, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// Template downloads the CSV import template
func (c *Client) Template(ctx context.Context) ([]byte, error) {
	return c.getBinary(ctx, "/upload/template", nil)
}

// Export downloads resources rendered in format (csv, excel, pdf, json)
func (c *Client) Export(ctx context.Context, format string, params url.Values) ([]byte, error) {
	return c.getBinary(ctx, "/export/"+escape(format), params)
}
