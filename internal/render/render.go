// Package render formats records and reports as plain text.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/starford/newsledger/internal/news"
	"github.com/starford/newsledger/internal/query"
)

// Record writes the display block of one record followed by a blank line.
func Record(w io.Writer, r news.Record) error {
	_, err := fmt.Fprintf(w, "Title: %s\nText: %s\nSubject: %s\nDate: %s\n\n", r.Title, r.Text, r.Subject, r.Date)
	return err
}

// Records writes the display block of every record in order.
func Records(w io.Writer, recs []news.Record) error {
	for _, r := range recs {
		if err := Record(w, r); err != nil {
			return err
		}
	}
	return nil
}

// Bar returns one star per whole percent.
func Bar(percent float64) string {
	n := int(percent)
	if n < 0 {
		n = 0
	}
	return strings.Repeat("*", n)
}

// Report writes the monthly ratio report, one line per month:
//
//	January | ************************* | 25.0% (4 articles)
func Report(w io.Writer, rep query.Report) error {
	title := fmt.Sprintf("Percentage of %q articles per month in %d", rep.Keyword, rep.Year)
	if _, err := fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat("=", len(title))); err != nil {
		return err
	}
	for _, m := range rep.Months {
		if _, err := fmt.Fprintf(w, "%-9s | %s | %.1f%% (%d articles)\n", m.Name, Bar(m.Percent), m.Percent, m.Total); err != nil {
			return err
		}
	}
	return nil
}
