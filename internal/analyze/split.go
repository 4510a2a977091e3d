package analyze

import "strings"

const (
	// DefaultMaxChars bounds a chunk's character count before it is flushed.
	DefaultMaxChars = 3000
	// DefaultOverlap is how much trailing context carries into the next chunk.
	DefaultOverlap = 200
)

// SplitChunks breaks text into line-aligned chunks of roughly maxChars
// characters. The tail of each chunk is repeated at the head of the next, up
// to overlap characters, so sentences cut at a boundary stay interpretable.
// A single line longer than maxChars becomes its own oversized chunk.
func SplitChunks(text string, maxChars, overlap int) []string {
	lines := strings.Split(text, "\n")
	var chunks []string
	var current []string
	currentLen := 0
	for _, line := range lines {
		if currentLen+len(line) > maxChars && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			if len(strings.Join(current, "\n")) > overlap {
				var overlapLines []string
				overlapLen := 0
				for i := len(current) - 1; i >= 0; i-- {
					if overlapLen+len(current[i]) >= overlap {
						break
					}
					overlapLines = append([]string{current[i]}, overlapLines...)
					overlapLen += len(current[i])
				}
				current = overlapLines
				currentLen = overlapLen
			} else {
				current = nil
				currentLen = 0
			}
		}
		current = append(current, line)
		currentLen += len(line)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}
	return chunks
}
