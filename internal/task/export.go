package task

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tiwariParth/taskboard/internal/models"
)

// ExportFormats lists the formats Export understands
var ExportFormats = []string{"json", "yaml", "csv"}

// SupportsFormat reports whether Export can write format
func SupportsFormat(format string) bool {
	switch strings.ToLower(format) {
	case "json", "yaml", "yml", "csv":
		return true
	}
	return false
}

// Export writes tasks to w in the given format
func Export(w io.Writer, tasks []models.Task, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tasks); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "csv":
		return exportCSV(w, tasks)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func exportCSV(w io.Writer, tasks []models.Task) error {
	writer := csv.NewWriter(w)

	header := []string{"ID", "Title", "Description", "Priority", "Completed", "Created At"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, t := range tasks {
		record := []string{
			t.ID,
			t.Title,
			t.Description,
			t.Priority.String(),
			strconv.FormatBool(t.Completed),
			t.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
