// File path: internal/docs/chunker.go
package docs

import "fmt"

// Chunk is a bounded substring of a source document, the unit of embedding
// and retrieval. Level 0 chunks are coarse sections; level 1 chunks are fine
// windows cut from within a single level 0 chunk and record their parent's
// level 0 ordinal. Index is the level 0 ordinal for coarse chunks and the
// character offset within the parent for fine chunks.
type Chunk struct {
	Text        string `json:"text"`
	Level       int    `json:"level"`
	Index       int    `json:"index"`
	ParentIndex int    `json:"parent_index"`
}

// ChunkText slides a window of size characters across text, stepping by
// size-overlap. Windows shorter than size/4 are dropped so trailing
// fragments do not pollute the index. overlap must be smaller than size;
// violating that would make the step non-positive.
func ChunkText(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap %d must be in [0, %d)", overlap, size)
	}
	runes := []rune(text)
	step := size - overlap
	var chunks []string
	for i := 0; i < len(runes); i += step {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		if end-i < size/4 {
			continue
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks, nil
}

// HierarchicalChunks builds two granularities: coarse level 0 windows over
// the whole text, then fine level 1 windows over each coarse window's
// substring only, so fine chunks never cross coarse boundaries.
func HierarchicalChunks(text string, sizes, overlaps [2]int) ([]Chunk, error) {
	if text == "" {
		return nil, nil
	}
	coarse, err := ChunkText(text, sizes[0], overlaps[0])
	if err != nil {
		return nil, fmt.Errorf("level 0 chunking: %w", err)
	}
	if sizes[1] <= 0 {
		return nil, fmt.Errorf("level 1 chunk size must be positive, got %d", sizes[1])
	}
	if overlaps[1] < 0 || overlaps[1] >= sizes[1] {
		return nil, fmt.Errorf("level 1 overlap %d must be in [0, %d)", overlaps[1], sizes[1])
	}
	var chunks []Chunk
	for i, section := range coarse {
		chunks = append(chunks, Chunk{Text: section, Level: 0, Index: i, ParentIndex: -1})
		runes := []rune(section)
		step := sizes[1] - overlaps[1]
		for j := 0; j < len(runes); j += step {
			end := j + sizes[1]
			if end > len(runes) {
				end = len(runes)
			}
			if end-j < sizes[1]/4 {
				continue
			}
			chunks = append(chunks, Chunk{Text: string(runes[j:end]), Level: 1, Index: j, ParentIndex: i})
		}
	}
	return chunks, nil
}
