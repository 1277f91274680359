// package formatter renders clean track records as CSV, JSON, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/tracketl/internal/models"
	"github.com/desertthunder/tracketl/internal/shared"
)

// Supported export formats.
const (
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// Formats lists every supported export format.
var Formats = []string{FormatCSV, FormatJSON, FormatMarkdown, FormatText}

// ExportToCSV converts rows to CSV with a header row taken from [models.TrackColumns]
func ExportToCSV(rows models.CleanRecordSet) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(models.ColumnNames(models.TrackColumns)); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range rows {
		record := []string{
			r.TrackName,
			r.Artist,
			r.Album,
			r.ReleaseDate.Format(models.DateLayout),
			strconv.Itoa(r.Popularity),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts rows to an indented JSON array of raw (textual) records
func ExportToJSON(rows models.CleanRecordSet) ([]byte, error) {
	raw := rows.Raw()
	if raw == nil {
		raw = models.RecordSet{}
	}
	data, err := shared.MarshalJSON(raw, true)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToMarkdown converts rows to a Markdown document with a table of tracks
func ExportToMarkdown(title string, rows models.CleanRecordSet) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(rows)))

	if len(rows) == 0 {
		return buf.Bytes(), nil
	}

	names := models.ColumnNames(models.TrackColumns)
	buf.WriteString("| # | " + strings.Join(names, " | ") + " |\n")
	buf.WriteString("|---|" + strings.Repeat("---|", len(names)) + "\n")

	for i, r := range rows {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %d |\n",
			i+1,
			escapeCell(r.TrackName),
			escapeCell(r.Artist),
			escapeCell(r.Album),
			r.ReleaseDate.Format(models.DateLayout),
			r.Popularity,
		))
	}

	return buf.Bytes(), nil
}

// ExportToText converts rows to plain text, one track per line
func ExportToText(title string, rows models.CleanRecordSet) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", title))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(rows)))

	for i, r := range rows {
		buf.WriteString(fmt.Sprintf("%d. %s - %s (%s, %s) [%d]\n",
			i+1, r.Artist, r.TrackName, r.Album, r.ReleaseDate.Format(models.DateLayout), r.Popularity))
	}

	return buf.Bytes(), nil
}

// Export renders rows in the named format.
func Export(format, title string, rows models.CleanRecordSet) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return ExportToCSV(rows)
	case FormatJSON:
		return ExportToJSON(rows)
	case FormatMarkdown, "md":
		return ExportToMarkdown(title, rows)
	case FormatText, "txt":
		return ExportToText(title, rows)
	default:
		return nil, fmt.Errorf("%w: format %q (expected one of %s)", shared.ErrInvalidArgument, format, strings.Join(Formats, ", "))
	}
}

// WriteExport renders rows in the named format and writes them to path.
func WriteExport(path, format, title string, rows models.CleanRecordSet) error {
	if path == "" {
		return fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}

	data, err := Export(format, title, rows)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
