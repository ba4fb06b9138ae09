package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"

	mangabridge "github.com/opengovern/manga-bridge"
)

// multipartForm buffers the whole body so the request can be replayed after a
// session refresh.
type multipartForm struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

func newMultipartForm() *multipartForm {
	f := &multipartForm{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

func (f *multipartForm) field(name, value string) {
	if f.err != nil || value == "" {
		return
	}
	f.err = f.w.WriteField(name, value)
}

func (f *multipartForm) file(name string, up *Upload) {
	if f.err != nil || up == nil || up.Content == nil {
		return
	}
	part, err := f.w.CreateFormFile(name, filepath.Base(up.Filename))
	if err != nil {
		f.err = err
		return
	}
	_, f.err = io.Copy(part, up.Content)
}

func (f *multipartForm) finish() ([]byte, string, error) {
	if f.err != nil {
		return nil, "", fmt.Errorf("build multipart form: %w", f.err)
	}
	if err := f.w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart form: %w", err)
	}
	return f.buf.Bytes(), f.w.FormDataContentType(), nil
}

func sendForm[T any](ctx context.Context, c *mangabridge.Client, method, endpoint string, form *multipartForm) (*T, error) {
	body, contentType, err := form.finish()
	if err != nil {
		return nil, err
	}
	env, err := c.Send(ctx, &mangabridge.NormalizedRequest{
		Method:   method,
		Endpoint: endpoint,
		Headers:  map[string]string{mangabridge.HeaderContentType: contentType},
		Body:     body,
	})
	if err != nil {
		return nil, err
	}
	return decode[T](env)
}
