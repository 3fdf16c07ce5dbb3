// internal/app/features/calendar/calendar.go

// Package calendar serves the academic calendar table as JSON and as a
// spreadsheet export.
package calendar

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/dalemusser/prepboard/internal/domain/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed calendar.yaml
var defaultYAML []byte

const dateLayout = "2006-01-02"

// Default returns the embedded calendar.
func Default() (models.Calendar, error) {
	return Parse(defaultYAML)
}

// Load reads the calendar from path. An empty path or a missing file yields
// the embedded default (the latter with a warning); a file that exists but
// does not parse or validate is an error.
func Load(path string, logger *zap.Logger) (models.Calendar, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("calendar file not found; using built-in calendar", zap.String("path", path))
		return Default()
	}
	if err != nil {
		return models.Calendar{}, fmt.Errorf("read calendar %s: %w", path, err)
	}
	cal, err := Parse(raw)
	if err != nil {
		return models.Calendar{}, fmt.Errorf("calendar %s: %w", path, err)
	}
	logger.Info("calendar loaded", zap.String("path", path), zap.Int("year", cal.Year))
	return cal, nil
}

// Parse decodes and validates calendar YAML. Unknown keys are rejected.
func Parse(raw []byte) (models.Calendar, error) {
	var cal models.Calendar
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cal); err != nil {
		return models.Calendar{}, fmt.Errorf("parse: %w", err)
	}
	if err := Validate(cal); err != nil {
		return models.Calendar{}, err
	}
	return cal, nil
}

// Validate checks that every row has a title and well-formed dates with
// end not before start.
func Validate(cal models.Calendar) error {
	if cal.Year <= 0 {
		return errors.New("year is required")
	}
	if len(cal.Semesters) == 0 {
		return errors.New("at least one semester is required")
	}
	for si, s := range cal.Semesters {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("semesters[%d]: name is required", si)
		}
		for ei, ev := range s.Events {
			where := fmt.Sprintf("%s events[%d]", s.Name, ei)
			if strings.TrimSpace(ev.Title) == "" {
				return fmt.Errorf("%s: title is required", where)
			}
			start, err := time.Parse(dateLayout, ev.Start)
			if err != nil {
				return fmt.Errorf("%s: start %q is not YYYY-MM-DD", where, ev.Start)
			}
			if ev.End == "" {
				continue
			}
			end, err := time.Parse(dateLayout, ev.End)
			if err != nil {
				return fmt.Errorf("%s: end %q is not YYYY-MM-DD", where, ev.End)
			}
			if end.Before(start) {
				return fmt.Errorf("%s: end is before start", where)
			}
		}
	}
	return nil
}
