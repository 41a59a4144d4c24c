// Package query runs read-only scans over a news.Store: subject and year
// search plus the monthly keyword ratio report.
package query

import (
	"strings"
	"time"

	"github.com/starford/newsledger/internal/datekey"
	"github.com/starford/newsledger/internal/news"
)

// DefaultKeyword is the subject fragment counted by the monthly report.
const DefaultKeyword = "politics"

// Result holds the records matched by a search, in chain order.
type Result struct {
	Records []news.Record
	// Skipped counts records left out because their date could not be parsed.
	Skipped int
}

// Found reports whether anything matched. A search with no matches is a
// normal outcome, not an error.
func (r Result) Found() bool { return len(r.Records) > 0 }

// BySubject returns the records whose subject equals subject exactly.
// The comparison is case-sensitive.
func BySubject(store *news.Store, subject string) Result {
	var res Result
	for rec := range store.All() {
		if rec.Subject == subject {
			res.Records = append(res.Records, rec)
		}
	}
	return res
}

// ByYear returns the records dated in year. Records with unparsable dates are
// skipped and counted in Result.Skipped.
func ByYear(store *news.Store, year int) Result {
	var res Result
	for rec := range store.All() {
		k, err := datekey.Parse(rec.Date)
		if err != nil {
			res.Skipped++
			continue
		}
		if k.Year() == year {
			res.Records = append(res.Records, rec)
		}
	}
	return res
}

// MonthStat is one row of a monthly report.
type MonthStat struct {
	Month   time.Month `json:"month"`
	Name    string     `json:"name"`
	Total   int        `json:"total"`
	Matched int        `json:"matched"`
	Percent float64    `json:"percent"`
}

// Report is the monthly keyword ratio for a single year.
type Report struct {
	Year    int           `json:"year"`
	Keyword string        `json:"keyword"`
	Months  [12]MonthStat `json:"months"`
	// Skipped counts records with unparsable dates.
	Skipped int `json:"skipped"`
}

// Total returns the number of records counted across all months.
func (r Report) Total() int {
	n := 0
	for _, m := range r.Months {
		n += m.Total
	}
	return n
}

// MonthlyRatio counts, for each month of year, all records dated in that month
// and the subset whose lower-cased subject contains keyword. Percent is
// Matched/Total*100, or 0 for a month with no records. Records from other
// years or with unparsable dates are left out of both counts.
func MonthlyRatio(store *news.Store, year int, keyword string) Report {
	var total, matched [12]int
	skipped := 0
	needle := strings.ToLower(keyword)

	for rec := range store.All() {
		k, err := datekey.Parse(rec.Date)
		if err != nil {
			skipped++
			continue
		}
		if k.Year() != year {
			continue
		}
		m := k.Month() - 1
		total[m]++
		if strings.Contains(strings.ToLower(rec.Subject), needle) {
			matched[m]++
		}
	}

	rep := Report{Year: year, Keyword: keyword, Skipped: skipped}
	for i := range rep.Months {
		month := time.Month(i + 1)
		st := MonthStat{Month: month, Name: month.String(), Total: total[i], Matched: matched[i]}
		if st.Total > 0 {
			st.Percent = float64(st.Matched) / float64(st.Total) * 100
		}
		rep.Months[i] = st
	}
	return rep
}
