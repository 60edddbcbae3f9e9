// package formatter renders a derived catalog view as CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name or its common file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
}

// Export renders res in format f.
func Export(res catalog.Result, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(res)
	case FormatMarkdown:
		return ExportToMarkdown(res)
	case FormatJSON:
		return ExportToJSON(res)
	case FormatText, "":
		return ExportToText(res)
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
}

// ExportToCSV converts a result to CSV with columns: ID, Title, Artist, Album, Group
func ExportToCSV(res catalog.Result) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Group"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, g := range res.Groups {
		for _, song := range g.Songs {
			record := []string{strconv.Itoa(song.ID), song.Title, song.Artist, song.Album, g.Label}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a result to Markdown, one section per group when grouped
func ExportToMarkdown(res catalog.Result) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Music Library\n\n")
	buf.WriteString(fmt.Sprintf("**Sort**: %s (%s)\n", res.View.SortBy.Label(), res.View.Order.Label()))
	if f, ok := res.View.GroupBy.Field(); ok {
		buf.WriteString(fmt.Sprintf("**Group**: %s\n", f.Label()))
	}
	buf.WriteString(fmt.Sprintf("**Showing**: %d of %d songs\n\n", res.Shown, res.Total))

	for _, g := range res.Groups {
		buf.WriteString(fmt.Sprintf("## %s\n\n", g.Label))
		if len(g.Songs) == 0 {
			buf.WriteString("No songs to display.\n\n")
			continue
		}
		for i, song := range g.Songs {
			albumPart := ""
			if song.Album != "" {
				albumPart = fmt.Sprintf(" (%s)", song.Album)
			}
			buf.WriteString(fmt.Sprintf("%d. %s - %s%s\n", i+1, song.Artist, song.Title, albumPart))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a result to plain text
func ExportToText(res catalog.Result) ([]byte, error) {
	var buf bytes.Buffer

	for _, g := range res.Groups {
		if res.Grouped() {
			buf.WriteString(fmt.Sprintf("%s\n", g.Label))
		}
		for _, song := range g.Songs {
			indent := ""
			if res.Grouped() {
				indent = "  "
			}
			buf.WriteString(fmt.Sprintf("%s%3d. %s - %s", indent, song.ID, song.Artist, song.Title))
			if song.Album != "" {
				buf.WriteString(fmt.Sprintf(" [%s]", song.Album))
			}
			buf.WriteString("\n")
		}
		if res.Grouped() {
			buf.WriteString("\n")
		}
	}
	if res.Shown == 0 {
		buf.WriteString("No songs to display.\n")
	}
	buf.WriteString(fmt.Sprintf("\nShowing %d of %d songs\n", res.Shown, res.Total))

	return buf.Bytes(), nil
}

// ExportToJSON renders the full result, including the view that produced it
func ExportToJSON(res catalog.Result) ([]byte, error) {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteExport renders res in format f and writes it to path.
//
// Defaults to songs.{ext} in the working directory.
func WriteExport(res catalog.Result, f Format, path string) (string, error) {
	if path == "" {
		path = "songs." + Extension(f)
	}

	data, err := Export(res, f)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// Extension returns the file extension for f.
func Extension(f Format) string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatMarkdown:
		return "md"
	case FormatJSON:
		return "json"
	}
	return "txt"
}
