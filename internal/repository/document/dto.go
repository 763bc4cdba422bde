package document

import (
	"encoding/binary"
	"math"
)

// Hash field names shared with the FT index schema.
const (
	FieldContent = "__content"
	FieldVector  = "__vector"
)

// buildHashFields converts content and embedding into a flat map for HSET.
func buildHashFields(content string, vector []float32) map[string]string {
	return map[string]string{
		FieldContent: content,
		FieldVector:  vectorToBytes(vector),
	}
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
