// Package export renders entries as the CSV file users download.
//
// Every field is quoted, rows are separated by a bare "\n" with no trailing
// newline, and the content starts with a UTF-8 byte order mark so spreadsheet
// applications pick the right encoding.
package export

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/timesheet/internal/core/datamodel/timesheet"
)

const (
	BOM         = "\ufeff"
	ContentType = "text/csv; charset=utf-8"
	missingName = "N/A"
)

var Header = []string{"Semana", "Usuario", "Email", "Proyecto", "Horas", "Desc", "Estado"}

// StatusLabel maps anything that is neither approved nor pending to "Rechazado".
func StatusLabel(status string) string {
	switch status {
	case timesheet.StatusApproved:
		return "Aprobado"
	case timesheet.StatusPending:
		return "Pendiente"
	default:
		return "Rechazado"
	}
}

func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func Row(e timesheet.Entry) []string {
	projectName := e.ProjectName
	if projectName == "" {
		projectName = missingName
	}
	return []string{
		e.Week,
		e.UserName,
		e.UserEmail,
		projectName,
		FormatHours(e.Hours),
		e.Description,
		StatusLabel(e.Status),
	}
}

// Format renders entries in the order given.
func Format(entries []timesheet.Entry) []byte {
	var b strings.Builder
	b.WriteString(BOM)
	writeRow(&b, Header)
	for _, e := range entries {
		b.WriteByte('\n')
		writeRow(&b, Row(e))
	}
	return []byte(b.String())
}

func Write(w io.Writer, entries []timesheet.Entry) error {
	_, err := w.Write(Format(entries))
	return err
}

// Filename is stamped with the UTC calendar date of t.
func Filename(t time.Time) string {
	return "timesheet-" + t.UTC().Format("2006-01-02") + ".csv"
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}
