// Package tokens estimates prompt sizes with the cl100k_base BPE.
package tokens

import (
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

const encoding = "cl100k_base"

var (
	once sync.Once
	enc  *tiktoken.Tiktoken
)

func load() *tiktoken.Tiktoken {
	once.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
		e, err := tiktoken.GetEncoding(encoding)
		if err == nil {
			enc = e
		}
	})
	return enc
}

// Count returns the token count of text. If the encoding cannot be loaded it
// falls back to ~4 chars per token.
func Count(text string) int {
	if text == "" {
		return 0
	}
	if e := load(); e != nil {
		return len(e.Encode(text, nil, nil))
	}
	return Estimate(text)
}

// Estimate is the rough chars/4 heuristic.
func Estimate(text string) int {
	return (len(text) + 3) / 4
}
