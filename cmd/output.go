package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"

	"github.com/jeremeybingham/reso-client/reso"
)

// outputTarget resolves the output format (flag over config) and opens the
// destination writer. The caller owns closing the writer.
func outputTarget() (string, io.WriteCloser, error) {
	format := cfg.Output.Format
	if outputFormat != "" {
		format = outputFormat
	}
	switch format {
	case "table", "json", "ndjson":
	default:
		return "", nil, fmt.Errorf("invalid output format: %s (must be 'table', 'json', or 'ndjson')", format)
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return "", nil, err
	}
	return format, out, nil
}

// openOutput opens the destination for rendered records, stdout when path
// is empty or "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// writeRecords renders a record set in the configured format.
func writeRecords(records []reso.Record, columns []string) error {
	format, out, err := outputTarget()
	if err != nil {
		return err
	}
	defer out.Close()

	switch format {
	case "json":
		return renderJSON(out, records)
	case "ndjson":
		return renderNDJSON(out, records)
	default:
		return renderTable(out, records, columns)
	}
}

// writeRecord renders a single record; in JSON mode it is emitted as a bare
// object rather than a one-element array.
func writeRecord(record reso.Record, columns []string) error {
	format, out, err := outputTarget()
	if err != nil {
		return err
	}
	defer out.Close()

	switch format {
	case "json":
		return renderJSON(out, record)
	case "ndjson":
		return renderNDJSON(out, []reso.Record{record})
	default:
		return renderTable(out, []reso.Record{record}, columns)
	}
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderNDJSON(w io.Writer, records []reso.Record) error {
	enc := json.NewEncoder(w)
	for _, record := range records {
		if err := enc.Encode(record); err != nil {
			return err
		}
	}
	return nil
}

// renderTable prints records as an aligned table. Column order follows the
// caller's $select list when one was given, otherwise the first record's
// field names sorted alphabetically.
func renderTable(w io.Writer, records []reso.Record, columns []string) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records.")
		return nil
	}

	if len(columns) == 0 {
		columns = defaultColumns(records[0])
	}

	table := tablewriter.NewWriter(w)
	table.Header(columns)
	for _, record := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = formatCell(record[col])
		}
		table.Append(row)
	}
	return table.Render()
}

// defaultColumns derives table columns from a record, dropping the
// @odata.* annotations the server injects.
func defaultColumns(record reso.Record) []string {
	columns := make([]string, 0, len(record))
	for key := range record {
		if strings.HasPrefix(key, "@odata.") {
			continue
		}
		columns = append(columns, key)
	}
	sort.Strings(columns)
	return columns
}

func formatCell(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		// Nested objects and arrays from $expand render as compact JSON.
		b, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return string(b)
	}
}
