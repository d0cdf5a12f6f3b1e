package grid

import (
	"net/url"
	"sync"
)

// QueryValues is a URLQuery backed by url.Values.
type QueryValues struct {
	mu     sync.RWMutex
	values url.Values
}

// ParseQuery builds QueryValues from a raw query string. Malformed input
// yields an empty query.
func ParseQuery(raw string) *QueryValues {
	values, err := url.ParseQuery(raw)
	if err != nil {
		values = url.Values{}
	}
	return &QueryValues{values: values}
}

func (q *QueryValues) Get(key string) string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.values.Get(key)
}

func (q *QueryValues) Set(key, value string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.values == nil {
		q.values = url.Values{}
	}
	q.values.Set(key, value)
}

func (q *QueryValues) Encode() string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.values.Encode()
}

// History is an in-memory navigation stack.
type History struct {
	mu      sync.Mutex
	entries []string
}

// NewHistory starts a history at initial.
func NewHistory(initial string) *History {
	return &History{entries: []string{initial}}
}

// Push appends a new entry.
func (h *History) Push(u string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, u)
}

// Replace implements Navigator.
func (h *History) Replace(u string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		h.entries = append(h.entries, u)
		return
	}
	h.entries[len(h.entries)-1] = u
}

// Current returns the active entry.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return ""
	}
	return h.entries[len(h.entries)-1]
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// TimeState holds the global time interval selection.
type TimeState struct {
	mu       sync.RWMutex
	interval Interval
	r        TimeRange
	updates  int
}

// NewTimeState starts at interval with an empty range.
func NewTimeState(interval Interval) *TimeState {
	return &TimeState{interval: interval}
}

// UpdateTimeInterval implements TimeDispatcher.
func (s *TimeState) UpdateTimeInterval(interval Interval, r TimeRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = interval
	s.r = r
	s.updates++
}

// Selected returns the current interval and range.
func (s *TimeState) Selected() (Interval, TimeRange) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interval, s.r
}

// Updates counts dispatched interval changes.
func (s *TimeState) Updates() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updates
}
