package export

import (
	"bufio"
	"io"
	"strings"
)

// quotingWriter is a gocsv.CSVWriter that can force quoting per column.
// encoding/csv only quotes fields that need it, which is not enough for
// the description column.
type quotingWriter struct {
	w         *bufio.Writer
	comma     rune
	quoteAll  bool
	forced    map[int]bool
	skipFirst bool
	rows      int
	err       error
}

func newQuotingWriter(w io.Writer, comma rune, quoteAll bool, forcedColumns ...int) *quotingWriter {
	forced := make(map[int]bool, len(forcedColumns))
	for _, c := range forcedColumns {
		forced[c] = true
	}
	return &quotingWriter{
		w:         bufio.NewWriter(w),
		comma:     comma,
		quoteAll:  quoteAll,
		forced:    forced,
		skipFirst: true,
	}
}

// Write writes one record. The first record is the header and is only
// quoted where its content requires it.
func (q *quotingWriter) Write(record []string) error {
	if q.err != nil {
		return q.err
	}
	header := q.skipFirst && q.rows == 0
	for i, field := range record {
		if i > 0 {
			if _, q.err = q.w.WriteRune(q.comma); q.err != nil {
				return q.err
			}
		}
		quote := q.needsQuotes(field) || (!header && (q.quoteAll || q.forced[i]))
		if quote {
			field = `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
		}
		if _, q.err = q.w.WriteString(field); q.err != nil {
			return q.err
		}
	}
	if _, q.err = q.w.WriteString("\n"); q.err != nil {
		return q.err
	}
	q.rows++
	return nil
}

func (q *quotingWriter) needsQuotes(field string) bool {
	if field == "" {
		return false
	}
	if strings.ContainsRune(field, q.comma) || strings.ContainsAny(field, "\"\r\n") {
		return true
	}
	return field[0] == ' ' || field[0] == '\t'
}

// Flush writes buffered data to the underlying writer.
func (q *quotingWriter) Flush() {
	if q.err != nil {
		return
	}
	q.err = q.w.Flush()
}

// Error reports any error from a previous Write or Flush.
func (q *quotingWriter) Error() error {
	return q.err
}
