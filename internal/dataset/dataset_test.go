package dataset

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/newsledger/internal/apperr"
	"github.com/starford/newsledger/internal/news"
	"github.com/starford/newsledger/internal/parser"
)

func records(s *news.Store) []news.Record {
	var out []news.Record
	for r := range s.All() {
		out = append(out, r)
	}
	return out
}

func TestLoad_SkipsHeaderAndKeepsOrder(t *testing.T) {
	in := "title,text,subject,date\n" +
		`"Hello, World","body, text",politicsNews,31-Dec-17` + "\n" +
		"Second,more,News,01-Jan-16\n"

	store, st, err := Load(strings.NewReader(in), parser.Comma)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Rows)
	assert.Equal(t, 2, store.Count())

	recs := records(store)
	assert.Equal(t, news.Record{Title: "Hello, World", Text: "body, text", Subject: "politicsNews", Date: "31-Dec-17"}, recs[0])
	assert.Equal(t, "Second", recs[1].Title)
}

func TestLoad_NoTrailingNewline(t *testing.T) {
	store, st, err := Load(strings.NewReader("h\nA,t,News,01-Jan-16"), parser.Comma)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Rows)
	assert.Equal(t, 1, store.Count())
}

func TestLoad_CRLF(t *testing.T) {
	store, _, err := Load(strings.NewReader("h\r\nA,t,News,01-Jan-16\r\n"), parser.Comma)
	require.NoError(t, err)
	recs := records(store)
	require.Len(t, recs, 1)
	assert.Equal(t, "01-Jan-16", recs[0].Date)
}

func TestLoad_HeaderOnlyAndEmpty(t *testing.T) {
	store, st, err := Load(strings.NewReader("title,text,subject,date\n"), parser.Comma)
	require.NoError(t, err)
	assert.True(t, store.Empty())
	assert.Zero(t, st.Rows)

	store, _, err = Load(strings.NewReader(""), parser.Comma)
	require.NoError(t, err)
	assert.True(t, store.Empty())
}

func TestLoad_Stats(t *testing.T) {
	in := "h\n" +
		"A,t,News,01-Jan-16\n" +
		"\n" +
		"B,t\n" +
		"C,t,News,02-Jan-16,extra\n" +
		"D,t,News,January 3 2016\n"

	store, st, err := Load(strings.NewReader(in), parser.Comma)
	require.NoError(t, err)
	assert.Equal(t, Stats{Rows: 4, Blank: 1, Short: 1, Long: 1, Undated: 2}, st)

	recs := records(store)
	assert.Equal(t, news.Record{Title: "B", Text: "t"}, recs[1])
	assert.Equal(t, "02-Jan-16", recs[2].Date)
}

func TestLoad_ReadErrorKeepsPartial(t *testing.T) {
	r := iotest.TimeoutReader(strings.NewReader("h\nA,t,News,01-Jan-16\n"))
	store, st, err := Load(r, parser.Comma)
	require.ErrorIs(t, err, iotest.ErrTimeout)
	assert.Equal(t, 1, st.Rows)
	assert.Equal(t, 1, store.Count())

	store, st, err = Load(iotest.ErrReader(errors.New("boom")), parser.Comma)
	require.Error(t, err)
	assert.True(t, store.Empty())
	assert.Zero(t, st.Rows)
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{"true", True},
		{"FAKE", Fake},
		{" combined ", Combined},
		{"1", True},
		{"2", Fake},
		{"3", Combined},
	}
	for _, tc := range tests {
		got, err := ParseID(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseID_Invalid(t *testing.T) {
	for _, in := range []string{"", "4", "all", "truth", "both"} {
		_, err := ParseID(in)
		assert.ErrorIs(t, err, apperr.ErrInvalidSelector, in)
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := ParseIDs(" Both ")
	require.NoError(t, err)
	assert.Equal(t, []ID{True, Fake}, ids)

	ids, err = ParseIDs("3")
	require.NoError(t, err)
	assert.Equal(t, []ID{Combined}, ids)

	_, err = ParseIDs("all")
	assert.ErrorIs(t, err, apperr.ErrInvalidSelector)
}
