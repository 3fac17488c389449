package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// PromptAudioKey returns the cache key for rendered prompt audio. The text
// is hashed so arbitrary phrases stay within sane Redis key sizes.
func (r *CacheKeyStruct) PromptAudioKey(voice, text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("tts:%s:%s", voice, hex.EncodeToString(sum[:8]))
}

var CacheKey = NewCacheKeyStruct()
