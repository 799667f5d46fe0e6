package rag

// FilterComplexMetadata removes metadata entries whose values the vector
// store schema cannot hold. Only scalar values survive: strings, booleans,
// integers and floats. Lists, maps, nils and structs are dropped from the
// chunk's metadata; the chunk itself is always kept. The input slice is not
// modified and chunk order is preserved.
func FilterComplexMetadata(chunks []Chunk) []Chunk {
	filtered := make([]Chunk, len(chunks))
	for i, chunk := range chunks {
		md := make(map[string]interface{}, len(chunk.Metadata))
		for k, v := range chunk.Metadata {
			if isScalar(v) {
				md[k] = v
			}
		}
		filtered[i] = Chunk{Text: chunk.Text, Metadata: md}
	}
	return filtered
}

func isScalar(v interface{}) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}
