package mcpserver

// DatasetFormat describes the delimited article files the server reads, so
// LLM consumers know what a record looks like before querying.
const DatasetFormat = `# Newsledger Dataset Format

Each dataset is a delimited text file (comma by default).

## Layout

- The first line is a header and is ignored.
- Every following non-empty line is one article with four fields, in order:
  title, text, subject, date.
- A double quote toggles quoted mode. Delimiters inside a quoted region belong
  to the field; the quote characters themselves are dropped.
- Missing trailing fields are empty. Fields beyond the fourth are ignored.

## Dates

Dates use the form ` + "`D-Mon-YY`" + `, for example ` + "`5-Jan-16`" + ` or ` + "`31-Dec-17`" + `.
Two-digit years 00-68 are 2000-2068 and 69-99 are 1969-1999. Records whose date
does not parse keep their place in the list, sort after every dated record and
never match a year search or a monthly report.

## Datasets

| selector | menu | file |
|----------|------|------|
| true     | 1    | true.csv |
| fake     | 2    | fake.csv |
| combined | 3    | combined.csv |
| both     |      | true.csv + fake.csv, count_articles only |

## Queries

- Subject search is exact and case-sensitive.
- The monthly report counts, for each month of one year, how many articles
  carry the keyword subject (default "politics") relative to all dated
  articles of that month.
`
