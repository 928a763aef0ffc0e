package service

import (
	"context"

	"creepycorners/internal/media"
)

// MediaStore is the part of media.Store the services need.
type MediaStore interface {
	Ingest(ctx context.Context, up *media.Upload) (*media.Reference, error)
	Remove(name string) error
}
