// Package codec holds the chunk geometry shared by the waveform encoder and
// decoder, and the per-type sample encodings used on the wire.
package codec

import "fmt"

// EnvelopeReserve is subtracted from every requested chunk size to leave
// room for the message envelope around the payload.
const EnvelopeReserve = 10

// AdjustedChunkSize returns the payload size of a full chunk: the requested
// size minus EnvelopeReserve, rounded down to a multiple of itemWidth.
// It returns 0 when no positive size remains.
func AdjustedChunkSize(requestedBytes, itemWidth int) int {
	if itemWidth <= 0 {
		return 0
	}
	size := requestedBytes - EnvelopeReserve
	if size <= 0 {
		return 0
	}
	return size - size%itemWidth
}

// TotalChunks returns ceil(sampleCount*itemWidth / chunkBytes).
func TotalChunks(sampleCount uint64, itemWidth, chunkBytes int) int {
	if sampleCount == 0 || itemWidth <= 0 || chunkBytes <= 0 {
		return 0
	}
	total := sampleCount * uint64(itemWidth)
	return int((total + uint64(chunkBytes) - 1) / uint64(chunkBytes))
}

// SliceByteSize returns the byte size of slice sliceIndex. Every slice but
// the last is chunkBytes long; the last holds the remainder. Indices outside
// [0, TotalChunks) have size 0.
func SliceByteSize(sliceIndex int, sampleCount uint64, itemWidth, chunkBytes int) int {
	chunks := TotalChunks(sampleCount, itemWidth, chunkBytes)
	if sliceIndex < 0 || sliceIndex >= chunks {
		return 0
	}
	if sliceIndex < chunks-1 {
		return chunkBytes
	}
	total := sampleCount * uint64(itemWidth)
	return int(total - uint64(sliceIndex)*uint64(chunkBytes))
}

// -----------------------------------------------------------------------------

// Plan is the chunk layout of one symbol read.
type Plan struct {
	SampleCount uint64
	ItemWidth   int
	ChunkBytes  int
	Chunks      int
}

// NewPlan lays out sampleCount items of itemWidth bytes in chunks derived
// from requestedBytes.
func NewPlan(sampleCount uint64, itemWidth, requestedBytes int) (Plan, error) {
	chunkBytes := AdjustedChunkSize(requestedBytes, itemWidth)
	if chunkBytes == 0 {
		return Plan{}, fmt.Errorf("chunk size %d leaves no room for %d-byte items", requestedBytes, itemWidth)
	}
	return Plan{
		SampleCount: sampleCount,
		ItemWidth:   itemWidth,
		ChunkBytes:  chunkBytes,
		Chunks:      TotalChunks(sampleCount, itemWidth, chunkBytes),
	}, nil
}

// TotalBytes is the size of the serialized array.
func (p Plan) TotalBytes() uint64 {
	return p.SampleCount * uint64(p.ItemWidth)
}

// SliceBytes is SliceByteSize for this plan.
func (p Plan) SliceBytes(i int) int {
	return SliceByteSize(i, p.SampleCount, p.ItemWidth, p.ChunkBytes)
}

// SliceSamples returns the first sample and the sample count of slice i.
func (p Plan) SliceSamples(i int) (start, count int) {
	return i * (p.ChunkBytes / p.ItemWidth), p.SliceBytes(i) / p.ItemWidth
}
