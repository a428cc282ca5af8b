package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// CacheService is an exact-match response cache in front of the model
// providers, keyed by an MD5 of the question. Redis being unavailable is
// never an error on the request path: lookups just miss.
type CacheService struct {
	appContext.DefaultService
	redis *redis.Client

	ttl time.Duration
}

const CACHE_SVC = "cache_svc"

const cacheKeyPrefix = "chat_cache:"

func (svc CacheService) Id() string {
	return CACHE_SVC
}

func (svc *CacheService) Configure(ctx *appContext.Context) error {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			redisDB = db
		}
	}

	svc.ttl = time.Hour
	if ttlStr := os.Getenv("CACHE_TTL_SECONDS"); ttlStr != "" {
		if seconds, err := strconv.Atoi(ttlStr); err == nil && seconds > 0 {
			svc.ttl = time.Duration(seconds) * time.Second
		}
	}

	svc.redis = redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	})

	return svc.DefaultService.Configure(ctx)
}

func (svc *CacheService) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := svc.redis.Ping(ctx).Result(); err != nil {
		log.WithError(err).Warn("Redis unavailable - response caching disabled")
		svc.redis = nil
	}

	return nil
}

func (svc *CacheService) Shutdown() {
	if svc.redis != nil {
		_ = svc.redis.Close()
	}
}

func (svc *CacheService) Enabled() bool {
	return svc.redis != nil
}

// Lookup returns the cached reply for a question, or "" on miss.
func (svc *CacheService) Lookup(ctx context.Context, question string) string {
	if svc.redis == nil {
		return ""
	}

	result, err := svc.redis.Get(ctx, cacheKey(question)).Result()
	if err == redis.Nil {
		return ""
	}
	if err != nil {
		log.WithError(err).Warn("Cache lookup failed")
		return ""
	}

	return result
}

// Store caches a reply. Failures are logged, never surfaced.
func (svc *CacheService) Store(ctx context.Context, question, reply string) {
	if svc.redis == nil {
		return
	}

	if err := svc.redis.Set(ctx, cacheKey(question), reply, svc.ttl).Err(); err != nil {
		log.WithError(err).Warn("Cache store failed")
	}
}

// Invalidate drops every cached reply. Operator escape hatch for knowledge
// base updates.
func (svc *CacheService) Invalidate(ctx context.Context) error {
	if svc.redis == nil {
		return fmt.Errorf("redis client not initialized")
	}

	var deleted int
	iter := svc.redis.Scan(ctx, 0, cacheKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := svc.redis.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return err
	}

	log.Infof("Cache invalidated: %d entries removed", deleted)
	return nil
}

func cacheKey(question string) string {
	sum := md5.Sum([]byte(question))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
