package weather

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"energysim/internal/model"
)

// ReadCSV parses weather records from a CSV stream.
//
// Expected format:
//
//	timestamp,temperature,solar_radiation,wind_speed,humidity,cloud_cover,precipitation
//	2025-01-01T00:00:00Z,-3.2,0,4.1,88,75,0
func ReadCSV(r io.Reader) ([]model.WeatherRecord, error) {
	var records []model.WeatherRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("parsing weather CSV: %w", err)
	}
	return records, nil
}

// WriteCSV writes weather records as CSV, header included.
func WriteCSV(w io.Writer, records []model.WeatherRecord) error {
	return gocsv.Marshal(&records, w)
}

// FileProvider serves weather from CSV files in a directory, one or more
// files per station. Data is loaded once per Fetch; nothing is cached
// between runs.
type FileProvider struct {
	Dir string
}

func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{Dir: dir}
}

func (p *FileProvider) Name() string { return "csv:" + p.Dir }

// Fetch loads every CSV in the directory and returns the records covering
// the requested range. The location is ignored; the files are the station.
func (p *FileProvider) Fetch(_ context.Context, _ model.Location, tr model.TimeRange) (*Series, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading weather directory %s: %w", p.Dir, err)
	}

	series := NewSeries()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		path := filepath.Join(p.Dir, entry.Name())
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		records, err := ReadCSV(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		series.Add(records)
	}

	if series.Len() == 0 {
		return nil, fmt.Errorf("no weather records found in %s", p.Dir)
	}
	covered, _ := series.TimeRange()
	if covered.Start.After(tr.Start) || covered.End.Before(tr.End) {
		return nil, fmt.Errorf("weather data covers %s to %s, requested %s to %s",
			covered.Start.Format(time.RFC3339), covered.End.Format(time.RFC3339),
			tr.Start.Format(time.RFC3339), tr.End.Format(time.RFC3339))
	}
	if err := series.CheckGaps(); err != nil {
		return nil, err
	}
	return series, nil
}
