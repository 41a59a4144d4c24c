// Package datekey turns article dates such as "31-Dec-17" into comparable
// integer keys of the form YYYYMMDD.
//
// Two-digit years follow the century rule of the time package: 69 through 99
// map to 1969-1999 and 00 through 68 map to 2000-2068.
package datekey

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the only accepted date format: day, abbreviated month, two-digit year.
// The day may be written with one or two digits.
const Layout = "2-Jan-06"

// ErrMalformedDate is returned for dates that do not match Layout.
var ErrMalformedDate = errors.New("malformed date")

// Key encodes a date as year*10000 + month*100 + day. The zero Key is never a
// valid date and stands for "unparsable".
type Key int

// Unknown is the key of an unparsable date.
const Unknown Key = 0

// Parse converts s into a Key. Unparsable input returns Unknown and an error
// wrapping ErrMalformedDate.
func Parse(s string) (Key, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(s))
	if err != nil {
		return Unknown, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	return FromTime(t), nil
}

// Of is Parse without the error: unparsable dates yield Unknown.
func Of(s string) Key {
	k, _ := Parse(s)
	return k
}

// FromTime builds a Key from the calendar date of t.
func FromTime(t time.Time) Key {
	return Key(t.Year()*10000 + int(t.Month())*100 + t.Day())
}

// Valid reports whether k came from a parsable date.
func (k Key) Valid() bool { return k > Unknown }

// Year returns the four-digit year, or 0 for Unknown.
func (k Key) Year() int { return int(k) / 10000 }

// Month returns the month, or 0 for Unknown.
func (k Key) Month() time.Month { return time.Month(int(k) / 100 % 100) }

// Day returns the day of month, or 0 for Unknown.
func (k Key) Day() int { return int(k) % 100 }

func (k Key) String() string {
	if !k.Valid() {
		return "unknown"
	}
	return fmt.Sprintf("%04d-%02d-%02d", k.Year(), k.Month(), k.Day())
}

// Compare orders a before b by date. Unknown sorts after every valid key and
// compares equal to itself.
func Compare(a, b Key) int {
	switch {
	case a == b:
		return 0
	case !a.Valid():
		return 1
	case !b.Valid():
		return -1
	case a < b:
		return -1
	default:
		return 1
	}
}
