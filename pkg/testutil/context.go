package testutil

import (
	"context"
	"time"

	"registrar/pkg/requestcontext"
)

// RequestContext returns a context carrying what the HTTP middleware chain
// would set: a request id and a fixed request time.
func RequestContext(requestID string, now time.Time) context.Context {
	ctx := requestcontext.WithRequestID(context.Background(), requestID)
	return requestcontext.WithTime(ctx, now)
}
