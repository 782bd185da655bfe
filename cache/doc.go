// Package cache provides the shared dictionary stores used by the translate
// package: a Redis-backed store for multi-process deployments and an
// in-memory store for single processes and tests.
//
// Both stores satisfy translate.CacheStore and report absent keys with
// translate.ErrCacheMiss. Writes are last-writer-wins.
package cache
