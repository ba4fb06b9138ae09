package mangabridge

import (
	"context"
	"log/slog"
)

// Adapter is the transport the client drives. It returns a response for every
// status code and an error only when no response was received.
type Adapter interface {
	ExecuteRequest(ctx context.Context, req *NormalizedRequest) (*NormalizedResponse, error)
}

// SessionExpiredHandler is told when the session could not be refreshed and the
// user has to sign in again at loginURL. loginURL is ClientConfig.LoginURL: the
// API origin plus LoginPath, unless LoginPath is itself an absolute URL.
type SessionExpiredHandler interface {
	SessionExpired(ctx context.Context, loginURL string, cause error)
}

// SessionExpiredFunc adapts a plain function to SessionExpiredHandler.
type SessionExpiredFunc func(ctx context.Context, loginURL string, cause error)

func (f SessionExpiredFunc) SessionExpired(ctx context.Context, loginURL string, cause error) {
	f(ctx, loginURL, cause)
}

type logSessionExpired struct {
	logger *slog.Logger
}

func (l logSessionExpired) SessionExpired(ctx context.Context, loginURL string, cause error) {
	l.logger.WarnContext(ctx, "session expired, sign in again", "login_url", loginURL, "error", cause)
}
