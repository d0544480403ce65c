// Package exsanitize checks spreadsheet rows against per-parameter numeric
// ranges and splits them into clean and bad rows.
package exsanitize

import (
	"log/slog"

	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/sanitizer"
)

// Options configures a sanitization run.
type Options struct {
	// DataSheet names the sheet holding the data rows.
	// If empty, the first sheet of the data workbook is used.
	DataSheet string
	// RangesSheet names the sheet holding the parameter ranges.
	// If empty, the first sheet of the ranges workbook is used.
	RangesSheet string
	// Logger receives skipped range rows at debug level and a summary at
	// info level. If nil, nothing is logged.
	Logger *slog.Logger
	// OnSkip is called for every range row left out of the constraint set.
	OnSkip sanitizer.Observer
}

// DefaultOptions returns default sanitization options.
func DefaultOptions() Options {
	return Options{}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (o Options) observer() sanitizer.Observer {
	log := o.logger()
	return func(row int, parameter string, reason sanitizer.SkipReason) {
		log.Debug("skipping range row",
			"row", row+2, // header is spreadsheet row 1
			"parameter", parameter,
			"reason", string(reason))
		if o.OnSkip != nil {
			o.OnSkip(row, parameter, reason)
		}
	}
}
