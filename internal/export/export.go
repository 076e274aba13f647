// Package export writes a harvested collection to disk as JSON or CSV.
// JSON keeps the nested bias analysis; CSV flattens it one row per article.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/harvestlab/newsharvest/internal/article"
)

const filenameStamp = "20060102_150405"

// TimestampedName returns the default dataset filename for the given
// extension, e.g. "newsharvest_dataset_20240605_093000.json".
func TimestampedName(ext string, now time.Time) string {
	return fmt.Sprintf("newsharvest_dataset_%s.%s", now.Format(filenameStamp), ext)
}

// WriteJSON writes the collection as an indented UTF-8 JSON array.
func WriteJSON(w io.Writer, collection []article.Article) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(collection); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteCSV writes the collection as CSV with a fixed header row. Nested
// fields are flattened with dotted column names.
func WriteCSV(w io.Writer, collection []article.Article) error {
	cw := csv.NewWriter(w)
	fields := article.FlatFields()
	if err := cw.Write(fields); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(fields))
	for _, a := range collection {
		flat := a.Flatten()
		for i, f := range fields {
			row[i] = flat[f]
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// SaveJSON writes the collection to path as JSON.
func SaveJSON(path string, collection []article.Article) error {
	return saveFile(path, collection, WriteJSON)
}

// SaveCSV writes the collection to path as CSV.
func SaveCSV(path string, collection []article.Article) error {
	return saveFile(path, collection, WriteCSV)
}

func saveFile(path string, collection []article.Article, write func(io.Writer, []article.Article) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f, collection); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
