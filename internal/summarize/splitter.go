package summarize

import (
	"unicode"

	"NewsBrief/internal/domain"
)

// Splitter cuts text into bounded chunks with a fixed overlap between neighbours.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter builds a splitter. An overlap that is not smaller than size is ignored.
func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = 4000
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return &Splitter{size: size, overlap: overlap}
}

// Split returns chunks in order. Chunk i+1 starts exactly overlap runes before chunk i ends,
// so dropping the first overlap runes of every chunk but the first rebuilds the input.
func (s *Splitter) Split(text string) []domain.Chunk {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	var chunks []domain.Chunk
	start := 0
	for {
		end := start + s.size
		if end >= n {
			end = n
		} else {
			end = s.breakPoint(runes, start, end)
		}

		chunks = append(chunks, domain.Chunk{
			Index: len(chunks),
			Text:  string(runes[start:end]),
			Start: start,
			End:   end,
		})
		if end == n {
			return chunks
		}

		next := end - s.overlap
		if next <= start {
			next = end
		}
		start = next
	}
}

// breakPoint moves end back to just after the last whitespace in the second half of the window.
func (s *Splitter) breakPoint(runes []rune, start, end int) int {
	floor := start + s.size/2
	if floor <= start+s.overlap {
		floor = start + s.overlap + 1
	}
	for i := end - 1; i >= floor; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return end
}
