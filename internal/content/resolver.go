package content

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// Resolver reads from the primary source and falls back to the secondary one
// only when the primary fails. An empty primary list or a missing slug is a
// real answer and is never masked by the fallback.
type Resolver struct {
	primary  Source
	fallback Source
	logger   logrus.FieldLogger
}

// NewResolver builds a resolver. Either source may be nil.
func NewResolver(primary, fallback Source, logger logrus.FieldLogger) *Resolver {
	if logger == nil {
		nop := logrus.New()
		nop.SetLevel(logrus.PanicLevel)
		logger = nop
	}
	return &Resolver{primary: primary, fallback: fallback, logger: logger}
}

// List returns published entries, newest first.
func (r *Resolver) List(ctx context.Context) ([]Entry, error) {
	if r.primary != nil {
		entries, err := r.primary.List(ctx)
		if err == nil {
			return entries, nil
		}

		r.logger.WithError(err).Warn("primary content source failed, using fallback")
		if r.fallback == nil {
			return []Entry{}, nil
		}
	}

	if r.fallback == nil {
		return []Entry{}, nil
	}

	entries, err := r.fallback.List(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "listing fallback content")
	}
	return entries, nil
}

// Get returns the entry with the given slug or ErrNotFound.
func (r *Resolver) Get(ctx context.Context, slug string) (*Entry, error) {
	if r.primary != nil {
		entry, err := r.primary.Get(ctx, slug)
		switch {
		case err == nil:
			return entry, nil
		case errors.Is(err, ErrNotFound):
			return nil, ErrNotFound
		}

		r.logger.WithError(err).WithField("slug", slug).Warn("primary content source failed, using fallback")
		if r.fallback == nil {
			return nil, ErrNotFound
		}
	}

	if r.fallback == nil {
		return nil, ErrNotFound
	}

	entry, err := r.fallback.Get(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "loading fallback content %s", slug)
	}
	return entry, nil
}
