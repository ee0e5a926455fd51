package services

import (
	"strings"
	"unicode/utf8"
)

type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText splits text into word-aligned windows of at most maxChunkSize runes.
// Consecutive windows share roughly overlap runes of trailing words.
// Extracted resume text has no reliable paragraph breaks, so words are the unit.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(words) {
		end := start
		size := 0
		for end < len(words) {
			n := utf8.RuneCountInString(words[end])
			if size > 0 {
				n++ // separator
			}
			if size > 0 && size+n > maxChunkSize {
				break
			}
			size += n
			end++
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end >= len(words) {
			break
		}
		start = overlapStart(words, start, end, overlap)
	}
	return chunks
}

// overlapStart walks back from end while the carried words fit in overlap runes.
// It always advances past start so the loop terminates.
func overlapStart(words []string, start, end, overlap int) int {
	next := end
	carried := 0
	for next-1 > start {
		n := utf8.RuneCountInString(words[next-1]) + 1
		if carried+n > overlap {
			break
		}
		carried += n
		next--
	}
	return next
}
