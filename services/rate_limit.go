package services

import (
	"fmt"
	"net/http"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/excel-master-lab/excel_quest_api/shared"
)

// RateLimitService throttles the endpoints a stuck or scripted client hammers:
// answer submissions and tutor chat. Counters live in redis so limits hold
// across instances.
type RateLimitService struct {
	context.DefaultService

	configs  map[string]*RateLimitConfig
	redisSvc *RedisService
}

type RateLimitConfig struct {
	EndpointType string
	MaxRequests  int64
	WindowSize   time.Duration
}

const RATE_LIMIT_SVC = "rate_limit_svc"

const (
	RateLimitSubmit = "submit"
	RateLimitChat   = "chat"
	RateLimitUpload = "upload"
)

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *context.Context) error {
	svc.configs = map[string]*RateLimitConfig{
		RateLimitSubmit: {EndpointType: RateLimitSubmit, MaxRequests: 30, WindowSize: time.Minute},
		RateLimitChat:   {EndpointType: RateLimitChat, MaxRequests: 10, WindowSize: time.Minute},
		RateLimitUpload: {EndpointType: RateLimitUpload, MaxRequests: 5, WindowSize: time.Minute},
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// Middleware enforces the named limit per client IP. Redis outages fail open;
// a broken counter should not take lessons down with it.
func (svc *RateLimitService) Middleware(endpointType string) fiber.Handler {
	config, ok := svc.configs[endpointType]
	if !ok {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("rate_limit:%s:%s", config.EndpointType, c.IP())

		count, err := svc.redisSvc.IncrWindow(c.UserContext(), key, config.WindowSize)
		if err != nil {
			log.Printf("Rate limit check failed for %s: %v", key, err)
			return c.Next()
		}

		if count > config.MaxRequests {
			return shared.ResponseJSON(c, http.StatusTooManyRequests, "Too many requests", fiber.Map{
				"retry_after_seconds": int(config.WindowSize.Seconds()),
			})
		}

		return c.Next()
	}
}
