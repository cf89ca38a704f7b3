// Package loader reads a transactions CSV into a typed core.Table.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"expense-analyzer/internal/core"
)

const bom = "\uFEFF"

// ResolvePath trims whitespace and quotes, cleans and absolutizes path,
// then checks it names a regular file.
func ResolvePath(path string) (string, error) {
	p := strings.TrimSpace(path)
	p = strings.Trim(p, `"'`)
	p = strings.TrimSpace(p)
	if p == "" {
		return "", &core.PathError{Path: path, Err: os.ErrNotExist}
	}

	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", &core.PathError{Path: p, Err: err}
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", &core.PathError{Path: abs, Err: err}
	}
	if !info.Mode().IsRegular() {
		return "", &core.PathError{Path: abs, Err: fmt.Errorf("not a regular file")}
	}
	return abs, nil
}

// Load resolves path and reads the file it names. The returned string is the
// resolved absolute path.
func Load(path string) (core.Table, string, error) {
	abs, err := ResolvePath(path)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, abs, &core.PathError{Path: abs, Err: err}
	}
	defer f.Close()

	table, err := Read(f)
	if err != nil {
		var empty *core.EmptyDataError
		if errors.As(err, &empty) {
			empty.Path = abs
		}
		return nil, abs, err
	}
	return table, abs, nil
}

// Read decodes CSV content. Either every row loads or none does.
func Read(r io.Reader) (core.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &core.EmptyDataError{}
	}
	if err != nil {
		return nil, toParseError(err)
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var table core.Table
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, toParseError(err)
		}
		line, _ := reader.FieldPos(0)

		tx, err := cols.transaction(row, line)
		if err != nil {
			return nil, err
		}
		table = append(table, tx)
	}

	if len(table) == 0 {
		return nil, &core.EmptyDataError{}
	}
	return table, nil
}

type columns struct {
	id, date, category, amount, description int
}

// indexColumns matches the required header names case-insensitively.
// Extra columns are ignored.
func indexColumns(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, bom)
		}
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := index[strings.ToLower(name)]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}

	cols := columns{
		id:          lookup("ID"),
		date:        lookup("Date"),
		category:    lookup("Category"),
		amount:      lookup("Amount"),
		description: lookup("Description"),
	}
	if len(missing) > 0 {
		return columns{}, &core.SchemaError{Missing: missing}
	}
	return cols, nil
}

func (c columns) transaction(row []string, line int) (core.Transaction, error) {
	date, err := core.ParseFlexibleDate(row[c.date])
	if err != nil {
		return core.Transaction{}, &core.ParseError{Line: line, Column: "Date", Err: err}
	}
	amount, err := core.ParseAmount(row[c.amount])
	if err != nil {
		return core.Transaction{}, &core.ParseError{Line: line, Column: "Amount", Err: err}
	}
	return core.Transaction{
		ID:          strings.TrimSpace(row[c.id]),
		Date:        date,
		Category:    strings.TrimSpace(row[c.category]),
		Amount:      amount,
		Description: strings.TrimSpace(row[c.description]),
	}, nil
}

func toParseError(err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &core.ParseError{Line: csvErr.StartLine, Err: csvErr.Err}
	}
	return &core.ParseError{Err: err}
}
