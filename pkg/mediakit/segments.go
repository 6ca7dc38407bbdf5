package mediakit

// Per-call-site chunk divisors for computing HLS segment counts. The ad and
// message upload flows have always used different divisors; both are kept
// until product confirms a single value.
const (
	// AdChunkSize is the divisor used by the ad upload flow.
	AdChunkSize int64 = 10 << 20
	// MessageChunkSize is the divisor used by the guest-message upload flow.
	MessageChunkSize int64 = 50 << 20

	DefaultChunkSize = MessageChunkSize

	minSegments = 2
	maxSegments = 10
)

// SegmentCount returns the number of HLS segments to request for a raw video
// of the given size: ceil(sizeBytes/chunkSize) clamped to [2,10]. Larger
// files get more segments; the count is monotonic non-decreasing in size.
// A non-positive chunkSize falls back to DefaultChunkSize.
func SegmentCount(sizeBytes, chunkSize int64) int {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	n := int((sizeBytes + chunkSize - 1) / chunkSize)
	if n < minSegments {
		return minSegments
	}
	if n > maxSegments {
		return maxSegments
	}
	return n
}
