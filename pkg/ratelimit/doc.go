// Package ratelimit limits JSON API requests per client IP.
//
// MemoryLimiter is a token bucket kept in process. RedisLimiter is a fixed
// window counter shared across instances. Middleware adds X-RateLimit-*
// headers and answers 429 with a Retry-After header once a client is over
// its limit. IPResolver attributes requests to the connecting address and
// only reads X-Forwarded-For or X-Real-IP from trusted proxies.
package ratelimit
