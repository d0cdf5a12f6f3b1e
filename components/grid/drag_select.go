package grid

import (
	"context"
	"math"
	"strconv"
)

// Query string keys carrying the selected time range.
const (
	QueryStartTime = "startTime"
	QueryEndTime   = "endTime"
)

// DragSelectBridge turns a time-range drag inside a panel into a URL update
// and a global custom interval.
type DragSelectBridge struct {
	Path      string
	Query     URLQuery
	Navigator Navigator
	Time      TimeDispatcher
	Telemetry Telemetry
}

// OnDragSelect handles a drag from start to end. Both timestamps are
// truncated toward zero. Equal endpoints update the URL only. Endpoints that
// are not finite or do not fit an int64 are ignored.
func (b *DragSelectBridge) OnDragSelect(start, end float64) {
	if b == nil || !timestampInRange(start) || !timestampInRange(end) {
		return
	}
	startTS := int64(math.Trunc(start))
	endTS := int64(math.Trunc(end))

	if b.Query != nil {
		b.Query.Set(QueryStartTime, strconv.FormatInt(startTS, 10))
		b.Query.Set(QueryEndTime, strconv.FormatInt(endTS, 10))
		if b.Navigator != nil {
			b.Navigator.Replace(b.Path + "?" + b.Query.Encode())
		}
	}

	if startTS == endTS {
		return
	}
	if b.Time != nil {
		b.Time.UpdateTimeInterval(IntervalCustom, TimeRange{Start: startTS, End: endTS})
	}
	normalizeTelemetry(b.Telemetry).Record(context.Background(), "grid.time.drag_select", map[string]any{
		"start": startTS,
		"end":   endTS,
	})
}

// timestampInRange reports whether v truncates to a valid int64. NaN fails
// both comparisons; -math.MinInt64 is 2^63, the first value past MaxInt64.
func timestampInRange(v float64) bool {
	return v >= math.MinInt64 && v < -math.MinInt64
}
