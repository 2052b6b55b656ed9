package export

import (
	"context"
	"errors"
)

// DocumentRequest asks a renderer to capture a rendered container as a
// document file.
type DocumentRequest struct {
	ContainerID string `json:"container"`
	Filename    string `json:"filename"`
}

// DocumentRenderer produces printable documents. Layout belongs to the
// renderer; the engine only names what to capture.
type DocumentRenderer interface {
	RenderDocument(ctx context.Context, req DocumentRequest) error
}

type DocumentRendererFunc func(ctx context.Context, req DocumentRequest) error

func (f DocumentRendererFunc) RenderDocument(ctx context.Context, req DocumentRequest) error {
	return f(ctx, req)
}

var ErrNoContainer = errors.New("document export needs a container id")

func Document(ctx context.Context, r DocumentRenderer, container_id, title string) (DocumentRequest, error) {
	if len(container_id) == 0 {
		return DocumentRequest{}, &Error{Row: -1, Err: ErrNoContainer}
	}
	req := DocumentRequest{ContainerID: container_id, Filename: Filename(title, "pdf")}
	if err := r.RenderDocument(ctx, req); err != nil {
		return DocumentRequest{}, &Error{Row: -1, Err: err}
	}
	return req, nil
}
