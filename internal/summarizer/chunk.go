package summarizer

import "github.com/nguyentantai21042004/brief-flow/internal/models"

// SplitChunks cuts text into rune windows of size runes, each starting
// size-overlap runes after the previous one. Every rune lands in some chunk.
func SplitChunks(text string, size, overlap int) []models.TextChunk {
	runes := []rune(text)
	if len(runes) == 0 || size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	step := size - overlap
	var chunks []models.TextChunk
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, models.TextChunk{
			Index: len(chunks) + 1,
			Text:  string(runes[start:end]),
			Start: start,
			End:   end,
		})
		if end == len(runes) {
			break
		}
	}
	return chunks
}
