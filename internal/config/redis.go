package config

// Redis backs the rate limiter and the catalog response cache. Both degrade
// to pass-through when the client is nil, so a missing Redis never blocks
// bookings.

import (
	"context"
	"crypto/tls"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions builds client options from the environment:
//
//	REDIS_HOST and REDIS_PORT  hostname and port of the Redis server
//	REDIS_ADDR                 host:port shorthand, used when host/port are unset
//	REDIS_PASSWORD             optional password
//	REDIS_DB                   database number (default 0)
//	REDIS_TLS                  enable TLS when "true" or "1"
func RedisOptions() *redis.Options {
	addr := os.Getenv("REDIS_ADDR")
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
		addr = host + ":" + port
	}
	if addr == "" {
		addr = "localhost:6379"
	}
	opts := &redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       envInt("REDIS_DB", 0),
	}
	if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}

// NewRedisClient connects with RedisOptions. It returns nil when REDIS_ENABLED
// is false or the server does not answer a ping within two seconds.
func NewRedisClient() *redis.Client {
	if !envBool("REDIS_ENABLED", true) {
		return nil
	}
	client := redis.NewClient(RedisOptions())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
