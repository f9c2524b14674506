package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrEmpty reports a CSV with no header row at all.
var ErrEmpty = errors.New("csv file is empty")

// Table holds one parsed CSV: the header row verbatim plus the data rows in
// file order. The header is never re-derived so a remote tab's column order
// always matches the source file.
type Table struct {
	Header []string
	Rows   [][]string
}

// Read parses the CSV at path. Rows may have ragged lengths; the scrapers
// are not consistent about trailing columns.
func Read(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, record)
	}

	return &Table{Header: header, Rows: rows}, nil
}

// CleanRows trims whitespace from data cells and blanks out NaN/Inf
// artifacts the scrapers leak from numeric columns. The header row is left
// untouched.
func (t *Table) CleanRows() {
	for _, row := range t.Rows {
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			switch strings.ToLower(cell) {
			case "nan", "inf", "+inf", "-inf":
				cell = ""
			}
			row[i] = cell
		}
	}
}

// ReadSample returns up to n bytes from the start of the file, used for
// content classification without reading arbitrarily large files.
func ReadSample(path string, n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", err
	}
	return string(buf[:read]), nil
}
