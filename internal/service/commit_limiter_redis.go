package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// El primer commit de la ventana fija el TTL en milisegundos; los siguientes solo cuentan.
const redisCommitWindowScript = `
local used = redis.call("INCR", KEYS[1])
if used == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return used
`

const redisCommitTimeout = 500 * time.Millisecond

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisCommitLimiter struct {
	client redisEvaler
	logger *zap.Logger
	window time.Duration
	max    int
	prefix string
}

// NewRedisCommitLimiter comparte el cupo de entrenamientos entre instancias de la API.
// Si Redis no responde el commit pasa y queda un warning en el log.
func NewRedisCommitLimiter(client *redis.Client, logger *zap.Logger, window time.Duration, max int) CommitLimiter {
	if client == nil {
		return nil
	}
	return newRedisCommitLimiter(client, logger, window, max)
}

func newRedisCommitLimiter(client redisEvaler, logger *zap.Logger, window time.Duration, max int) *redisCommitLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if window < time.Millisecond {
		window = time.Hour
	}
	if max <= 0 {
		max = 1
	}
	return &redisCommitLimiter{
		client: client,
		logger: logger,
		window: window,
		max:    max,
		prefix: "wizard:commit:",
	}
}

func (l *redisCommitLimiter) Allow(ctx context.Context, userID string) bool {
	if l == nil || l.client == nil {
		return true
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}
	// El request puede tener su propio deadline; nunca esperar mas que redisCommitTimeout.
	ctx, cancel := context.WithTimeout(ctx, redisCommitTimeout)
	defer cancel()

	used, err := l.client.Eval(ctx, redisCommitWindowScript, []string{l.prefix + userID}, l.window.Milliseconds()).Int64()
	if err != nil {
		l.logger.Warn("commit limiter unavailable, allowing commit",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return true
	}
	if used > int64(l.max) {
		l.logger.Info("commit quota exhausted",
			zap.String("user_id", userID),
			zap.Int64("used", used),
			zap.Int("max", l.max),
		)
		return false
	}
	return true
}
