package dashboard

import (
	"fmt"
	"sync"
	"time"

	"github.com/afroash/aqi-monitor/internal/models"
)

// DefaultHistorySize is the number of AQI points kept for the trend chart
const DefaultHistorySize = 20

// HistoryBuffer is a bounded FIFO of AQI points. When full, the oldest
// entry is evicted to make room.
type HistoryBuffer struct {
	entries  []models.HistoryEntry
	capacity int
	mutex    sync.RWMutex
	stats    HistoryStats
}

// HistoryStats tracks buffer usage
type HistoryStats struct {
	TotalAppended int64     `json:"total_appended"`
	TotalEvicted  int64     `json:"total_evicted"`
	Size          int       `json:"size"`
	Capacity      int       `json:"capacity"`
	LastAppend    time.Time `json:"last_append"`
}

// NewHistoryBuffer creates a history buffer. A capacity below 1 uses
// DefaultHistorySize.
func NewHistoryBuffer(capacity int) *HistoryBuffer {
	if capacity < 1 {
		capacity = DefaultHistorySize
	}
	return &HistoryBuffer{
		entries:  make([]models.HistoryEntry, 0, capacity),
		capacity: capacity,
	}
}

// Append adds an entry, evicting the oldest one if the buffer is full
func (h *HistoryBuffer) Append(entry models.HistoryEntry) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if len(h.entries) >= h.capacity {
		// Shift in place so the backing array never grows past capacity.
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
		h.stats.TotalEvicted++
	}
	h.entries = append(h.entries, entry)
	h.stats.TotalAppended++
	h.stats.LastAppend = time.Now()
}

// Entries returns a copy of the buffered entries, oldest first
func (h *HistoryBuffer) Entries() []models.HistoryEntry {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	result := make([]models.HistoryEntry, len(h.entries))
	copy(result, h.entries)
	return result
}

// Latest returns the most recent entry
func (h *HistoryBuffer) Latest() (models.HistoryEntry, bool) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if len(h.entries) == 0 {
		return models.HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Size returns the number of buffered entries
func (h *HistoryBuffer) Size() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.entries)
}

// Capacity returns the maximum number of entries
func (h *HistoryBuffer) Capacity() int {
	// capacity is fixed at construction
	return h.capacity
}

// Clear removes all entries and resets statistics
func (h *HistoryBuffer) Clear() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.entries = h.entries[:0]
	h.stats = HistoryStats{}
}

// Stats returns a copy of the buffer statistics
func (h *HistoryBuffer) Stats() HistoryStats {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	stats := h.stats
	stats.Size = len(h.entries)
	stats.Capacity = h.capacity
	return stats
}

func (h *HistoryBuffer) String() string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return fmt.Sprintf("History[%d/%d, evicted: %d]", len(h.entries), h.capacity, h.stats.TotalEvicted)
}
