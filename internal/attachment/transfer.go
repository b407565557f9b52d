// Package attachment moves receipt files from their Organizze source URLs
// into the myPay blob store: download, classify, size-gate, re-host.
package attachment

import (
	"context"
	"errors"

	"github.com/mypay/organizze-sync/internal/blob"
)

// ErrTooLarge marks an attachment rejected by the size gate. It is a
// deliberate, permanent skip: the source object will not fit and retrying
// cannot change that.
var ErrTooLarge = errors.New("attachment too large")

// Source fetches attachment bytes.
type Source interface {
	Download(ctx context.Context, sourceURL string) (*File, error)
}

// Sink stores attachment bytes and returns the durable reference.
type Sink interface {
	Upload(ctx context.Context, data []byte, contentType, fileName string) (*blob.Object, error)
}

// Transfer re-hosts attachments one at a time, pacing between operations.
type Transfer struct {
	source Source
	sink   Sink
	pacer  Pacer
}

// NewTransfer wires a transfer pipeline.
func NewTransfer(source Source, sink Sink, pacer Pacer) *Transfer {
	return &Transfer{source: source, sink: sink, pacer: pacer}
}

// Move downloads one attachment and uploads it to the blob store, returning
// the new stored reference. A failure affects only this attachment; callers
// continue with the rest of their batch. Pacing runs after the attempt, on
// both outcomes.
func (t *Transfer) Move(ctx context.Context, sourceURL string) (*blob.Object, error) {
	obj, err := t.move(ctx, sourceURL)
	if err != nil {
		if perr := t.pacer.WaitFailure(ctx); perr != nil {
			return nil, perr
		}
		return nil, err
	}
	if perr := t.pacer.WaitSuccess(ctx); perr != nil {
		return nil, perr
	}
	return obj, nil
}

func (t *Transfer) move(ctx context.Context, sourceURL string) (*blob.Object, error) {
	file, err := t.source.Download(ctx, sourceURL)
	if err != nil {
		return nil, err
	}
	return t.sink.Upload(ctx, file.Data, file.ContentType, file.FileName)
}
