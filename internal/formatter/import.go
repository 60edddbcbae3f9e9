package formatter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// ParseCSV reads song inputs from CSV with a header row naming at least Title, Artist and Album.
//
// Column order is free and matching is case-insensitive, so files written by [ExportToCSV] read back directly.
// Other columns (ID, Group) are ignored.
func ParseCSV(r io.Reader) ([]models.SongInput, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty CSV", shared.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"title", "artist", "album"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: CSV header is missing %q", shared.ErrInvalidInput, required)
		}
	}

	cell := func(record []string, name string) string {
		i := cols[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var inputs []models.SongInput
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		inputs = append(inputs, models.SongInput{
			Title:  cell(record, "title"),
			Artist: cell(record, "artist"),
			Album:  cell(record, "album"),
		})
	}
	return inputs, nil
}

// ReadCSVFile opens path and parses it with [ParseCSV].
func ReadCSVFile(path string) ([]models.SongInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ParseCSV(f)
}
