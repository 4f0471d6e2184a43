package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/erazemk/tigerpop/internal/imaging"
)

// UploadParallelism bounds concurrent image preparation.
const UploadParallelism = 4

// UploadImages prepares files and uploads them in one multipart request.
// The returned URLs are in input order. The call is atomic: on any
// failure no URLs are returned.
func (c *Client) UploadImages(ctx context.Context, files []imaging.File) ([]string, error) {
	const op = "upload images"
	if len(files) == 0 {
		return []string{}, nil
	}
	if err := c.requireToken(op); err != nil {
		return nil, err
	}
	for _, f := range files {
		if err := imaging.CheckName(f.Name); err != nil {
			return nil, &Error{Kind: KindInvalid, Op: op, Reason: err.Error(), Err: err}
		}
	}

	prepared, err := imaging.PrepareAll(ctx, files, UploadParallelism)
	if err != nil {
		return nil, &Error{Kind: KindInvalid, Op: op, Reason: err.Error(), Err: err}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range prepared {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, f.Name))
		h.Set("Content-Type", "image/jpeg")
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, &Error{Kind: KindInvalid, Op: op, Err: err}
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, &Error{Kind: KindInvalid, Op: op, Err: err}
		}
	}
	if err := mw.Close(); err != nil {
		return nil, &Error{Kind: KindInvalid, Op: op, Err: err}
	}

	var out struct {
		URLs []string `json:"urls"`
	}
	status, err := c.send(ctx, op, request{
		method: http.MethodPost,
		path:   "listing/upload/",
		raw:    &body,
		ctype:  mw.FormDataContentType(),
	}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.URLs) != len(files) {
		return nil, &Error{
			Kind:   KindHTTP,
			Op:     op,
			Status: status,
			Reason: fmt.Sprintf("expected %d urls, got %d", len(files), len(out.URLs)),
		}
	}
	return out.URLs, nil
}
