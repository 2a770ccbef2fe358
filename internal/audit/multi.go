package audit

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Multi fans a record out to every sink concurrently and joins their errors.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, rec Record) error {
	errs := make([]error, len(m))
	var g errgroup.Group
	for i, s := range m {
		g.Go(func() error {
			errs[i] = s.Emit(ctx, rec)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
