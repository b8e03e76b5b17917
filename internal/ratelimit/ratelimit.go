package ratelimit

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_admin/internal/logging"
)

type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

func NewRedisLimiter(addr, password string) (*redis_rate.Limiter, *redis.Client) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return redis_rate.NewLimiter(rdb), rdb
}

// PerClient limits requests per client IP under the given route name. When the
// limiter itself fails the request is let through.
func PerClient(limiter RequestRateLimiter, routeName string, allowedPerMin int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			res, err := limiter.Allow(ctx, routeName+":"+c.RealIP(), redis_rate.PerMinute(allowedPerMin))
			if err != nil {
				logging.FromContext(ctx).Warn("rate_limit_unavailable", "route", routeName, "error", err)
				return next(c)
			}

			if res.Allowed > 0 {
				return next(c)
			}

			retry := int(math.Ceil(res.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many attempts, try again later")
		}
	}
}
