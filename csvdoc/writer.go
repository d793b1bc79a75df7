package csvdoc

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	nt "logtab/entity"
)

// Write serializes header and records, one newline-terminated line per record.
// No validation is done here, callers validate arity beforehand.
func Write(wtr io.Writer, doc nt.Document) (err error) {

	buf := bufio.NewWriter(wtr)

	err = writeRecord(buf, doc.Header)
	if err != nil {
		return
	}

	for _, record := range doc.Records {
		err = writeRecord(buf, record)
		if err != nil {
			return
		}
	}

	err = buf.Flush()
	err = errors.Wrapf(err, "failed to flush")
	return
}

// WriteFile overwrites path with the serialized document.
func WriteFile(path string, doc nt.Document) (err error) {

	file, err := os.Create(path)
	if err != nil {
		err = errors.Wrapf(nt.ErrIO, "failed to create %s: %s", path, err)
		return
	}

	err = Write(file, doc)
	if err != nil {
		file.Close()
		err = errors.Wrapf(nt.ErrIO, "failed to write %s: %s", path, err)
		return
	}

	err = file.Close()
	if err != nil {
		err = errors.Wrapf(nt.ErrIO, "failed to close %s: %s", path, err)
	}
	return
}

// Escape quotes a field when it holds a comma, double quote or newline.
func Escape(field string) string {

	if !strings.ContainsAny(field, ",\"\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// unexported

func writeRecord(buf *bufio.Writer, record nt.Record) (err error) {

	for i, field := range record {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(Escape(field))
	}

	err = buf.WriteByte('\n')
	err = errors.Wrapf(err, "failed to write record")
	return
}
