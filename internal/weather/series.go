package weather

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"energysim/internal/model"
)

// DefaultMaxGap is the widest spacing between native observations that is
// still bridged by interpolation. Wider gaps surface as a GapError.
const DefaultMaxGap = 3 * time.Hour

// GapError reports an unresolvable hole in a weather series.
type GapError struct {
	Before time.Time
	After  time.Time
}

func (e *GapError) Error() string {
	return fmt.Sprintf("weather gap from %s to %s exceeds interpolation window",
		e.Before.Format(time.RFC3339), e.After.Format(time.RFC3339))
}

// Series holds weather records sorted by timestamp and interpolates them to
// arbitrary simulation timestamps. A run materializes its full series before
// the step loop starts; the series itself never fetches.
type Series struct {
	mu      sync.RWMutex
	records []model.WeatherRecord
	maxGap  time.Duration
}

func NewSeries() *Series {
	return &Series{maxGap: DefaultMaxGap}
}

// SetMaxGap overrides the interpolation window.
func (s *Series) SetMaxGap(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxGap = d
}

// Add inserts records, keeping the series sorted by timestamp.
func (s *Series) Add(records []model.WeatherRecord) {
	if len(records) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	sort.Slice(s.records, func(i, j int) bool {
		return s.records[i].Timestamp.Before(s.records[j].Timestamp)
	})
}

// Len returns the number of native records.
func (s *Series) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// TimeRange returns the span covered by the native records.
func (s *Series) TimeRange() (model.TimeRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) == 0 {
		return model.TimeRange{}, false
	}
	return model.TimeRange{
		Start: s.records[0].Timestamp,
		End:   s.records[len(s.records)-1].Timestamp,
	}, true
}

// Records returns a copy of the native records in range [start, end].
func (s *Series) Records(start, end time.Time) []model.WeatherRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lo := sort.Search(len(s.records), func(i int) bool {
		return !s.records[i].Timestamp.Before(start)
	})
	hi := sort.Search(len(s.records), func(i int) bool {
		return s.records[i].Timestamp.After(end)
	})
	if lo >= hi {
		return nil
	}
	out := make([]model.WeatherRecord, hi-lo)
	copy(out, s.records[lo:hi])
	return out
}

// At returns the record interpolated linearly between the two native
// observations bracketing t. Exact matches are returned verbatim. Times
// outside the covered range, and brackets wider than the interpolation
// window, are errors.
func (s *Series) At(t time.Time) (model.WeatherRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return model.WeatherRecord{}, fmt.Errorf("weather series is empty")
	}

	// First record at or after t.
	idx := sort.Search(len(s.records), func(i int) bool {
		return !s.records[i].Timestamp.Before(t)
	})

	if idx < len(s.records) && s.records[idx].Timestamp.Equal(t) {
		return s.records[idx], nil
	}
	if idx == 0 || idx == len(s.records) {
		return model.WeatherRecord{}, fmt.Errorf("timestamp %s outside weather data range", t.Format(time.RFC3339))
	}

	before, after := s.records[idx-1], s.records[idx]
	if after.Timestamp.Sub(before.Timestamp) > s.maxGap {
		return model.WeatherRecord{}, &GapError{Before: before.Timestamp, After: after.Timestamp}
	}

	frac := float64(t.Sub(before.Timestamp)) / float64(after.Timestamp.Sub(before.Timestamp))
	return lerpRecord(before, after, frac, t), nil
}

// CheckGaps returns the first gap wider than the interpolation window, if any.
func (s *Series) CheckGaps() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := 1; i < len(s.records); i++ {
		if s.records[i].Timestamp.Sub(s.records[i-1].Timestamp) > s.maxGap {
			return &GapError{Before: s.records[i-1].Timestamp, After: s.records[i].Timestamp}
		}
	}
	return nil
}

func lerpRecord(a, b model.WeatherRecord, frac float64, t time.Time) model.WeatherRecord {
	return model.WeatherRecord{
		Timestamp:       t,
		TemperatureC:    lerp(a.TemperatureC, b.TemperatureC, frac),
		GlobalRadiation: lerp(a.GlobalRadiation, b.GlobalRadiation, frac),
		WindSpeedMS:     lerp(a.WindSpeedMS, b.WindSpeedMS, frac),
		HumidityPct:     lerp(a.HumidityPct, b.HumidityPct, frac),
		CloudCoverPct:   lerp(a.CloudCoverPct, b.CloudCoverPct, frac),
		Precipitation:   lerp(a.Precipitation, b.Precipitation, frac),
	}
}

func lerp(a, b, frac float64) float64 {
	return a + (b-a)*frac
}
