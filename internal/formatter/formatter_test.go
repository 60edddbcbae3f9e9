package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/shared"
	th "github.com/desertthunder/songbook/internal/testing"
)

func groupedResult() catalog.Result {
	v := catalog.DefaultView()
	v.GroupBy = catalog.GroupKey(catalog.FieldAlbum)
	return catalog.Derive(th.Songs(), v)
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(groupedResult())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "ID,Title,Artist,Album,Group\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,Love Story,Taylor Swift,Fearless,Fearless") {
			t.Errorf("CSV missing Love Story row")
		}
		if !strings.Contains(output, "5,Demo,Unsigned,,Unknown") {
			t.Errorf("CSV missing Unknown group row")
		}
		if lines := strings.Count(output, "\n"); lines != 6 {
			t.Errorf("expected 6 lines, got %d", lines)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(groupedResult())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "# Music Library") {
			t.Errorf("Markdown missing title")
		}
		if !strings.Contains(output, "**Sort**: Title (Asc)") {
			t.Errorf("Markdown missing sort line")
		}
		if !strings.Contains(output, "**Group**: Album") {
			t.Errorf("Markdown missing group line")
		}
		if !strings.Contains(output, "**Showing**: 5 of 5 songs") {
			t.Errorf("Markdown missing count")
		}
		if !strings.Contains(output, "## Fearless\n\n1. Taylor Swift - Fifteen (Fearless)\n2. Taylor Swift - Love Story (Fearless)") {
			t.Errorf("Markdown missing Fearless section, got: %s", output)
		}
		if !strings.Contains(output, "1. Unsigned - Demo\n") {
			t.Errorf("Markdown should omit empty album")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		t.Run("ungrouped", func(t *testing.T) {
			data, err := ExportToText(catalog.Derive(th.Songs(), catalog.DefaultView()))
			if err != nil {
				t.Fatalf("ExportToText failed: %v", err)
			}

			output := string(data)
			if !strings.Contains(output, "  2. Leonard Cohen - Anthem [The Future]") {
				t.Errorf("Text missing Anthem, got: %s", output)
			}
			if !strings.Contains(output, "Showing 5 of 5 songs") {
				t.Errorf("Text missing summary")
			}
		})

		t.Run("empty result", func(t *testing.T) {
			v := catalog.DefaultView()
			v.Filters.Title = "zzz"
			data, _ := ExportToText(catalog.Derive(th.Songs(), v))
			if !strings.Contains(string(data), "No songs to display.") || !strings.Contains(string(data), "Showing 0 of 5 songs") {
				t.Errorf("unexpected empty output: %s", data)
			}
		})

		t.Run("grouped", func(t *testing.T) {
			data, _ := ExportToText(groupedResult())
			if !strings.Contains(string(data), "Unknown\n    5. Unsigned - Demo\n") {
				t.Errorf("Text missing grouped Unknown entry, got: %s", data)
			}
		})
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(groupedResult())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded catalog.Result
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("JSON does not decode: %v", err)
		}
		if decoded.Shown != 5 || len(decoded.Groups) != 4 || decoded.View.GroupBy != "album" {
			t.Errorf("unexpected decoded result %+v", decoded)
		}
	})
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatText, "txt": FormatText, "CSV": FormatCSV, "md": FormatMarkdown, "json": FormatJSON}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("%q: expected %s, got %s (%v)", in, want, got, err)
		}
	}

	if _, err := ParseFormat("yaml"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("WithCustomPath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.md")
		got, err := WriteExport(groupedResult(), FormatMarkdown, path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		if content := th.MustReadFile(t, path); !strings.Contains(content, "# Music Library") {
			t.Errorf("file missing Markdown content")
		}
	})

	t.Run("WithDefaultPath", func(t *testing.T) {
		t.Chdir(t.TempDir())

		got, err := WriteExport(groupedResult(), FormatCSV, "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if got != "songs.csv" {
			t.Errorf("expected songs.csv, got %s", got)
		}
		th.AssertFileExists(t, got)
	})

	t.Run("UnwritablePath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "out.txt")
		if _, err := WriteExport(groupedResult(), FormatText, path); err == nil {
			t.Error("expected error writing into a missing directory")
		}
	})
}
