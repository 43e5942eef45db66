package twin

import "github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"

// DefaultHistoryLen is the cap used by the dashboards.
const DefaultHistoryLen = 50

// AppendAndTrim returns a new slice holding history followed by r, with the
// oldest readings dropped so the result has at most maxLen elements. maxLen
// below 1 is treated as 1. The input slice is not modified.
func AppendAndTrim(history []domain.Reading, r domain.Reading, maxLen int) []domain.Reading {
	if maxLen < 1 {
		maxLen = 1
	}
	if drop := len(history) + 1 - maxLen; drop > 0 {
		history = history[drop:]
	}
	out := make([]domain.Reading, 0, len(history)+1)
	out = append(out, history...)
	return append(out, r)
}

// History is a fixed-capacity FIFO of readings backed by a ring buffer.
type History struct {
	buf  []domain.Reading
	head int // index of the oldest reading
	size int
}

func NewHistory(maxLen int) *History {
	if maxLen < 1 {
		maxLen = 1
	}
	return &History{buf: make([]domain.Reading, maxLen)}
}

// Append adds r as the newest reading and reports whether the oldest was evicted.
func (h *History) Append(r domain.Reading) bool {
	if h.size < len(h.buf) {
		h.buf[(h.head+h.size)%len(h.buf)] = r
		h.size++
		return false
	}
	h.buf[h.head] = r
	h.head = (h.head + 1) % len(h.buf)
	return true
}

func (h *History) Len() int { return h.size }
func (h *History) Cap() int { return len(h.buf) }

func (h *History) Latest() (domain.Reading, bool) {
	if h.size == 0 {
		return domain.Reading{}, false
	}
	return h.buf[(h.head+h.size-1)%len(h.buf)], true
}

// Snapshot copies the readings oldest first.
func (h *History) Snapshot() []domain.Reading {
	out := make([]domain.Reading, h.size)
	for i := range out {
		out[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	return out
}
