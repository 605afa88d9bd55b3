package upstream

import (
	"context"
	"fmt"
)

// Result is the outcome of a loop-until-exhausted fetch. On failure Records
// is empty even if earlier pages succeeded, and Err holds the cause.
type Result[T any] struct {
	Records  []T
	Requests int
	Err      error
}

// OK reports whether every page was fetched.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// fetchAll pages through path with offset += limit until a page is
// unsuccessful, empty or shorter than limit. Each page is timed under op.
func fetchAll[T any](ctx context.Context, c *Client, op, path string, limit int) Result[T] {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	var (
		all      []T
		offset   int
		requests int
	)
	for {
		requests++
		env, err := getPage[T](ctx, c, op, path, limit, offset)
		if err != nil {
			c.logger.Error("paginated fetch failed",
				"source", c.name,
				"path", path,
				"offset", offset,
				"error", err)
			return Result[T]{Requests: requests, Err: fmt.Errorf("fetch %s%s at offset %d: %w", c.name, path, offset, err)}
		}
		if !env.Success {
			c.logger.Warn("upstream reported unsuccessful page", "source", c.name, "offset", offset, "message", env.Message)
			break
		}
		if len(env.Data) == 0 {
			break
		}

		all = append(all, env.Data...)
		c.logger.Debug("fetched page", "source", c.name, "offset", offset, "records", len(env.Data), "total", len(all))

		if len(env.Data) < limit {
			break
		}
		offset += limit
	}

	return Result[T]{Records: all, Requests: requests}
}
