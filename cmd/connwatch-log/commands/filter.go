package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/connwatch/connwatch/pkg/log"
)

// FilterOptions specifies filtering criteria given on the command line.
type FilterOptions struct {
	SessionID    string
	DeviceID     string
	Category     string
	Outcome      string
	NotifiedOnly bool
	TimeStart    string
	TimeEnd      string
}

// Build converts the options into a log.Filter.
func (o FilterOptions) Build() (log.Filter, error) {
	filter := log.Filter{
		SessionID:    o.SessionID,
		DeviceID:     o.DeviceID,
		NotifiedOnly: o.NotifiedOnly,
	}

	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}

	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}

	if o.Category != "" {
		c, err := ParseCategoryFlag(o.Category)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Category = &c
	}

	if o.Outcome != "" {
		out, err := ParseOutcomeFlag(o.Outcome)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Outcome = &out
	}

	return filter, nil
}

// RunFilter copies the events of path matching opts into the capture file
// output and reports the count on w.
func RunFilter(path, output string, opts FilterOptions, w io.Writer) error {
	filter, err := opts.Build()
	if err != nil {
		return err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	logger, err := log.NewFileLogger(output)
	if err != nil {
		return fmt.Errorf("failed to create output logger: %w", err)
	}
	defer logger.Close()

	count := 0
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		logger.Log(event)
		count++
	}

	fmt.Fprintf(w, "Filtered %d events to %s\n", count, output)
	return nil
}
