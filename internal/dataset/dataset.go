// Package dataset loads article datasets from line-oriented delimited text.
package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/starford/newsledger/internal/apperr"
	"github.com/starford/newsledger/internal/datekey"
	"github.com/starford/newsledger/internal/news"
	"github.com/starford/newsledger/internal/parser"
)

// ID names one of the three datasets.
type ID string

// Known datasets.
const (
	True     ID = "true"
	Fake     ID = "fake"
	Combined ID = "combined"
)

// IDs lists every dataset in menu order.
var IDs = []ID{True, Fake, Combined}

// ParseID validates a caller-supplied dataset selector. Besides the names it
// accepts the menu numbers 1, 2 and 3.
func ParseID(s string) (ID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return True, nil
	case "fake", "2":
		return Fake, nil
	case "combined", "3":
		return Combined, nil
	}
	return "", fmt.Errorf("%w: dataset %q", apperr.ErrInvalidSelector, s)
}

// Both is the selector that counts the true and fake datasets together.
const Both = "both"

// ParseIDs resolves a selector that may name several datasets: Both yields
// true and fake, anything else must be a single selector accepted by ParseID.
func ParseIDs(s string) ([]ID, error) {
	if strings.EqualFold(strings.TrimSpace(s), Both) {
		return []ID{True, Fake}, nil
	}
	id, err := ParseID(s)
	if err != nil {
		return nil, err
	}
	return []ID{id}, nil
}

func (id ID) String() string { return string(id) }

// Stats describes what a load pass saw.
type Stats struct {
	// Rows is the number of records inserted.
	Rows int `json:"rows"`
	// Blank counts empty lines, which are skipped.
	Blank int `json:"blank"`
	// Short counts rows with fewer than four fields; missing fields are stored empty.
	Short int `json:"short"`
	// Long counts rows with more than four fields; surplus fields are dropped.
	Long int `json:"long"`
	// Undated counts rows whose date field cannot be parsed.
	Undated int `json:"undated"`
}

// Load reads delimited lines from r into a new store. The first line is a
// header and is discarded; every following non-empty line becomes one record.
// A read error returns the records loaded so far together with the error.
func Load(r io.Reader, delim rune) (*news.Store, Stats, error) {
	store := news.NewStore()
	var st Stats

	br := bufio.NewReader(r)
	header := true
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			if header {
				header = false
			} else {
				add(store, &st, line, delim)
			}
		}
		if errors.Is(err, io.EOF) {
			return store, st, nil
		}
		if err != nil {
			return store, st, fmt.Errorf("dataset: read line %d: %w", st.Rows+st.Blank+2, err)
		}
	}
}

func add(store *news.Store, st *Stats, line string, delim rune) {
	if strings.TrimSuffix(line, "\r") == "" {
		st.Blank++
		return
	}
	f := parser.ParseRecord(line, delim)
	switch {
	case f.Short():
		st.Short++
	case f.Extra() > 0:
		st.Long++
	}
	if !datekey.Of(f.Date).Valid() {
		st.Undated++
	}
	store.Insert(f.Title, f.Text, f.Subject, f.Date)
	st.Rows++
}
