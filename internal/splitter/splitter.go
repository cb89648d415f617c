// Package splitter implements a recursive character text splitter.
// Splitting is a pure function of its inputs: the same text and config
// always produce the same chunk sequence, which keeps ingestion
// reproducible.
package splitter

import "strings"

// Config controls chunk sizing. Sizes are measured in bytes. Separators
// are tried in priority order; the empty string means a hard character
// cut and must come last.
type Config struct {
	ChunkSize  int
	Overlap    int
	Separators []string
}

// DefaultSeparators prefers paragraph breaks, then line breaks, then
// word boundaries, then a hard cut.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

const (
	defaultChunkSize = 1000
	defaultOverlap   = 150
)

func (c Config) normalized() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = defaultChunkSize
	}
	if c.Overlap < 0 {
		c.Overlap = 0
	}
	if c.Overlap >= c.ChunkSize {
		c.Overlap = c.ChunkSize / 2
	}
	if len(c.Separators) == 0 {
		c.Separators = DefaultSeparators
	}
	return c
}

// Split breaks text into chunks of at most cfg.ChunkSize bytes. Adjacent
// fragments are merged greedily; when a chunk fills up, the next chunk
// re-starts with the trailing fragments of the previous one, up to
// cfg.Overlap bytes, so consecutive chunks share a span. Every chunk is
// an exact substring of text. Empty input yields no chunks; input that
// already fits yields a single chunk with no overlap.
func Split(text string, cfg Config) []string {
	if text == "" {
		return nil
	}
	cfg = cfg.normalized()
	return merge(fragment(text, cfg.ChunkSize, cfg.Separators), cfg)
}

// fragment recursively cuts text into pieces no longer than size whose
// concatenation is exactly text. Separators stay attached to the
// fragment they terminate.
func fragment(text string, size int, separators []string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}
	if len(separators) == 0 || separators[0] == "" {
		// Hard cut: single characters, merged back by the caller. This
		// is what makes the overlap exact when no separator exists.
		out := make([]string, 0, len(text))
		for i := 0; i < len(text); i++ {
			out = append(out, text[i:i+1])
		}
		return out
	}

	var out []string
	for _, part := range strings.SplitAfter(text, separators[0]) {
		if part == "" {
			continue
		}
		if len(part) <= size {
			out = append(out, part)
			continue
		}
		out = append(out, fragment(part, size, separators[1:])...)
	}
	return out
}

// merge greedily packs fragments into chunks of at most cfg.ChunkSize
// bytes, carrying up to cfg.Overlap bytes of trailing fragments into the
// next chunk.
func merge(frags []string, cfg Config) []string {
	var chunks []string
	var cur []string
	curLen := 0

	flush := func() {
		chunks = append(chunks, strings.Join(cur, ""))
		keepFrom := len(cur)
		keepLen := 0
		for i := len(cur) - 1; i >= 0; i-- {
			if keepLen+len(cur[i]) > cfg.Overlap {
				break
			}
			keepLen += len(cur[i])
			keepFrom = i
		}
		cur = append([]string(nil), cur[keepFrom:]...)
		curLen = keepLen
	}

	for _, f := range frags {
		if curLen > 0 && curLen+len(f) > cfg.ChunkSize {
			flush()
			// A large fragment can overflow even after the flush; shed
			// carried overlap until it fits. Fragments never exceed
			// ChunkSize on their own.
			for curLen > 0 && curLen+len(f) > cfg.ChunkSize {
				curLen -= len(cur[0])
				cur = cur[1:]
			}
		}
		cur = append(cur, f)
		curLen += len(f)
	}
	if curLen > 0 {
		chunks = append(chunks, strings.Join(cur, ""))
	}
	return chunks
}
