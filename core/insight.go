package core

import "context"

// InsightService is any service that can turn an analytics summary into
// free-text commentary. Failures are returned as-is; callers are expected
// to degrade to a fallback message and must not retry.
type InsightService interface {
	Generate(ctx context.Context, data interface{}) (string, error)
}
