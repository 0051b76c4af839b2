package buffer

// Buffer is an arena hosting unrelated byte sequences (segments) one after another, limited
// by a total size. A segment returned by Finish stays valid and unchanged until Clear is
// called, even if the arena grows later: growth moves new data only.
type Buffer struct {
	memory  []byte
	begin   int
	maxSize int
}

func New(initialSize, maxSize int) *Buffer {
	return &Buffer{
		memory:  make([]byte, 0, min(initialSize, maxSize)),
		maxSize: maxSize,
	}
}

// Append writes data into the current segment. If the total size would exceed the limit,
// nothing is written and false is returned.
func (b *Buffer) Append(elements []byte) (ok bool) {
	if len(b.memory)+len(elements) > b.maxSize {
		return false
	}

	b.memory = append(b.memory, elements...)
	return true
}

// SegmentLength returns a number of bytes taken by the current segment.
func (b *Buffer) SegmentLength() int {
	return len(b.memory) - b.begin
}

// Len returns a number of bytes taken by all the segments.
func (b *Buffer) Len() int {
	return len(b.memory)
}

// Finish completes current segment, returning its value.
func (b *Buffer) Finish() []byte {
	segment := b.memory[b.begin:len(b.memory):len(b.memory)]
	b.begin = len(b.memory)

	return segment
}

// Clear resets the pointers, so previously finished segments may be overridden.
func (b *Buffer) Clear() {
	b.begin = 0
	b.memory = b.memory[:0]
}
