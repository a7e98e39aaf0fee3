// Package loaders builds the initial state of each console page: it fans out
// the backend calls a page needs, joins on all of them, drops null records
// and reduces every failure to a single message.
package loaders

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/payfisc/payfisc-admin/i18n"
	"github.com/payfisc/payfisc-admin/internal/apiclient"
	"github.com/payfisc/payfisc-admin/internal/logging"
)

// Page is what a list screen receives. Error is "" when every call succeeded.
type Page[T any] struct {
	Records    []T
	Error      string
	Pagination *apiclient.Pagination
}

// Step is one backend call of a fan-out. It returns "" on success or the
// user-facing message of its failure.
type Step func(ctx context.Context) string

// Compact drops nil entries, keeping the order of the others. The result is
// never nil.
func Compact[T any](in []*T) []T {
	out := make([]T, 0, len(in))
	for _, p := range in {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// Run executes steps concurrently and waits for all of them. The returned
// message is the one of the first failing step in declaration order,
// whatever order they finished in. A panicking step counts as a failure
// with the generic message.
func Run(ctx context.Context, logger *zap.Logger, page string, steps ...Step) string {
	msgs := make([]string, len(steps))
	var g errgroup.Group
	for i, step := range steps {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					logging.From(ctx, logger).Error("page loader step panicked",
						zap.String("page", page),
						zap.Int("step", i),
						zap.String("panic", fmt.Sprint(r)),
						zap.String("request_id", logging.RequestID(ctx)),
					)
					msgs[i] = i18n.T(i18n.LangFrom(ctx), "err.generic")
				}
			}()
			msgs[i] = step(ctx)
			return nil
		})
	}
	_ = g.Wait()

	for _, m := range msgs {
		if m != "" {
			return m
		}
	}
	return ""
}

// Into adapts a list call into a Step writing compacted records to dst.
// dst is always left non-nil.
func Into[T any](dst *[]T, call func(ctx context.Context) apiclient.Envelope[[]*T]) Step {
	*dst = []T{}
	return func(ctx context.Context) string {
		env := call(ctx)
		if !env.OK() {
			return env.Message
		}
		*dst = Compact(env.Data)
		return ""
	}
}

// One adapts a single-record call into a Step.
func One[T any](dst *T, call func(ctx context.Context) apiclient.Envelope[*T]) Step {
	return func(ctx context.Context) string {
		env := call(ctx)
		if !env.OK() {
			return env.Message
		}
		if env.Data != nil {
			*dst = *env.Data
		}
		return ""
	}
}
