package etl

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// rawRow is one CSV record remapped to a processor's declared column order.
// Missing trailing fields stay "".
type rawRow []string

// readCSVChunks streams a semicolon-delimited, Latin-1 encoded CSV in bounded
// chunks. The government bundles sometimes carry a header row and sometimes
// do not: when the first record names every declared column it is consumed as
// a header and fields are remapped by name, otherwise the file is read
// positionally in the declared fixed order. headerless skips detection for
// file types that never ship a header.
func readCSVChunks(path string, columns []string, chunkSize int, headerless bool, fn func(rows []rawRow) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(f))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var index []int
	first := true
	chunk := make([]rawRow, 0, chunkSize)

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		if err := fn(chunk); err != nil {
			return err
		}
		chunk = chunk[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		if first {
			first = false
			if !headerless {
				if idx, ok := headerIndex(record, columns); ok {
					index = idx
					continue
				}
			}
		}

		row := make(rawRow, len(columns))
		if index != nil {
			for i, pos := range index {
				if pos < len(record) {
					row[i] = record[pos]
				}
			}
		} else {
			for i := range columns {
				if i < len(record) {
					row[i] = record[i]
				}
			}
		}
		chunk = append(chunk, row)

		if len(chunk) >= chunkSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

// headerIndex maps declared column names to record positions when the first
// record is a header carrying every declared name. One missing name means
// the file is a header-less positional export and the record is data.
func headerIndex(record []string, columns []string) ([]int, bool) {
	pos := make(map[string]int, len(record))
	for i, name := range record {
		pos[strings.ToLower(strings.TrimSpace(name))] = i
	}

	index := make([]int, len(columns))
	for i, col := range columns {
		p, ok := pos[strings.ToLower(col)]
		if !ok {
			return nil, false
		}
		index[i] = p
	}
	return index, true
}

func indexColumns(columns []string) map[string]int {
	out := make(map[string]int, len(columns))
	for i, col := range columns {
		out[col] = i
	}
	return out
}
