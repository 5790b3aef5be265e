package export

import (
	"encoding/csv"
	"io"
)

// utf8BOM lets spreadsheet programs detect the encoding of umlauts.
const utf8BOM = "\ufeff"

// WriteCSV writes a BOM, the header and rows separated by semicolons.
func WriteCSV(w io.Writer, rows []Row) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Strings()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
