package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultSeparators are tried in order when splitting text recursively.
var DefaultSeparators = []string{"\n\n", "\n", ".", " "}

// span marks a half-open rune range [start, end) of the source text.
type span struct {
	start int
	end   int
}

func (s span) len() int {
	return s.end - s.start
}

// RecursiveChunker creates a chunker that splits text on the first separator
// found, recursing into pieces still longer than size with the remaining
// separators and hard cutting when none is left. Pieces are then merged
// greedily into chunks of at most size runes, and each chunk repeats at most
// overlap runes of whole trailing pieces of its predecessor.
// Separators stay attached to the end of the piece they terminate, so the
// chunks reconstruct the input once overlaps are removed.
func RecursiveChunker(size int, overlap int, separators []string) ChunkFunc {
	return func(text string) ([]ChunkSpan, error) {
		if size <= 0 {
			return nil, fmt.Errorf("chunk size must be positive, got %d", size)
		}
		if overlap < 0 || overlap >= size {
			return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
		}
		if strings.TrimSpace(text) == "" {
			return []ChunkSpan{}, nil
		}

		runes := []rune(text)
		pieces := splitRecursive(runes, span{0, len(runes)}, size, separators)
		merged := mergePieces(pieces, size, overlap)

		chunks := make([]ChunkSpan, 0, len(merged))
		for i, s := range merged {
			chunks = append(chunks, ChunkSpan{
				Content:    string(runes[s.start:s.end]),
				StartPos:   s.start,
				EndPos:     s.end,
				ChunkIndex: i,
			})
		}
		return chunks, nil
	}
}

// DefaultChunker splits with 500 rune chunks, 50 runes overlap and the default separators.
func DefaultChunker() ChunkFunc {
	return RecursiveChunker(500, 50, DefaultSeparators)
}

func splitRecursive(runes []rune, s span, size int, separators []string) []span {
	if s.len() <= size {
		return []span{s}
	}

	segment := string(runes[s.start:s.end])
	for i, sep := range separators {
		if sep == "" || !strings.Contains(segment, sep) {
			continue
		}

		var pieces []span
		offset := s.start
		for _, part := range strings.SplitAfter(segment, sep) {
			if part == "" {
				continue
			}
			partSpan := span{offset, offset + utf8.RuneCountInString(part)}
			offset = partSpan.end
			if partSpan.len() > size {
				pieces = append(pieces, splitRecursive(runes, partSpan, size, separators[i+1:])...)
			} else {
				pieces = append(pieces, partSpan)
			}
		}
		return pieces
	}

	var pieces []span
	for start := s.start; start < s.end; start += size {
		pieces = append(pieces, span{start, min(start+size, s.end)})
	}
	return pieces
}

func mergePieces(pieces []span, size int, overlap int) []span {
	var chunks []span
	var current []span
	total := 0

	for _, piece := range pieces {
		if total+piece.len() > size && len(current) > 0 {
			chunks = append(chunks, span{current[0].start, current[len(current)-1].end})
			for total > overlap || (total+piece.len() > size && total > 0) {
				total -= current[0].len()
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += piece.len()
	}

	if len(current) > 0 {
		last := span{current[0].start, current[len(current)-1].end}
		if len(chunks) == 0 || last.end > chunks[len(chunks)-1].end {
			chunks = append(chunks, last)
		}
	}
	return chunks
}
