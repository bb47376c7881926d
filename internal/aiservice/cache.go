package aiservice

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// cacheSize bounds how many suggestions are held before LRU eviction.
const cacheSize = 512

// SuggestionCache replays a recent identical answer instead of re-invoking
// the model. Entries expire on a short TTL so callers still see fresh
// suggestions once their data changes.
type SuggestionCache struct {
	lru *expirable.LRU[string, string]
}

func NewSuggestionCache(ttl time.Duration) *SuggestionCache {
	return &SuggestionCache{
		lru: expirable.NewLRU[string, string](cacheSize, nil, ttl),
	}
}

// Key builds the cache key for one request. The instruction is part of the
// key so differently-worded requests never collide.
func (c *SuggestionCache) Key(userID string, kind Kind, instruction string) string {
	return fmt.Sprintf("%s|%s|%s", userID, kind, instruction)
}

func (c *SuggestionCache) Get(key string) (string, bool) {
	return c.lru.Get(key)
}

func (c *SuggestionCache) Set(key, text string) {
	c.lru.Add(key, text)
}

// Len reports the live entry count, for the admin health surface.
func (c *SuggestionCache) Len() int {
	return c.lru.Len()
}
