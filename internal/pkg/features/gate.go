package features

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// FlagRelocationEnabled gates the relocation upload endpoint
const FlagRelocationEnabled = "relocation:enabled"

const keyPrefix = "feature:"

// Gate answers feature-flag checks. The zero decision is "disabled": an
// unset flag or an unreachable backend both fail closed, since flags guard
// experimental surfaces.
type Gate struct {
	client *redis.Client
	logger *zap.Logger
}

// NewGate creates a redis-backed feature gate
func NewGate(client *redis.Client, logger *zap.Logger) *Gate {
	return &Gate{
		client: client,
		logger: logger,
	}
}

// Enabled reports whether the named flag is switched on
func (g *Gate) Enabled(ctx context.Context, flag string) bool {
	val, err := g.client.Get(ctx, keyPrefix+flag).Result()
	if err != nil {
		if err != redis.Nil {
			g.logger.Warn("feature flag lookup failed, treating as disabled",
				zap.String("flag", flag),
				zap.Error(err),
			)
		}
		return false
	}

	return val == "1" || val == "true" || val == "on"
}

// Enable switches the named flag on (used by ops tooling and tests)
func (g *Gate) Enable(ctx context.Context, flag string) error {
	if err := g.client.Set(ctx, keyPrefix+flag, "1", 0).Err(); err != nil {
		return fmt.Errorf("failed to enable flag %s: %w", flag, err)
	}
	return nil
}

// Disable switches the named flag off
func (g *Gate) Disable(ctx context.Context, flag string) error {
	if err := g.client.Set(ctx, keyPrefix+flag, "0", 0).Err(); err != nil {
		return fmt.Errorf("failed to disable flag %s: %w", flag, err)
	}
	return nil
}
