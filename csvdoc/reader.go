// Package csvdoc reads, writes and validates comma separated log documents.
//
// Delimiters are all ascii, so input is scanned bytewise and field bytes
// pass through untouched whatever their encoding.
//
// Fields containing a comma, double quote or newline are wrapped in double
// quotes, with internal quotes doubled.
package csvdoc

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	nt "logtab/entity"
)

type state int

const (
	unquoted state = iota
	quoted
)

// Reader yields records one at a time from delimited text.
type Reader struct {
	src   *bufio.Reader
	state state
	field strings.Builder
	row   nt.Record
	done  bool
}

// NewReader creates a Reader.
func NewReader(rdr io.Reader) *Reader {

	return &Reader{
		src: bufio.NewReader(rdr),
	}
}

// Read returns the next record, or io.EOF once input is exhausted.
func (rdr *Reader) Read() (record nt.Record, err error) {

	if rdr.done {
		err = io.EOF
		return
	}

	for {
		var char byte
		char, err = rdr.src.ReadByte()
		if err == io.EOF {
			rdr.done = true
			if rdr.field.Len() > 0 || len(rdr.row) > 0 {
				record = rdr.endRecord()
				err = nil
			}
			return
		}
		if err != nil {
			err = errors.Wrapf(nt.ErrIO, "failed to read: %s", err)
			return
		}

		if rdr.state == quoted {
			err = rdr.readQuoted(char)
			if err != nil {
				return
			}
			continue
		}

		switch char {
		case '"':
			rdr.state = quoted
		case ',':
			rdr.endField()
		case '\n':
			record = rdr.endRecord()
			return
		default:
			rdr.field.WriteByte(char)
		}
	}
}

// Parse reads a whole document from text.
// The first record is the header, an empty input yields an empty document.
func Parse(data []byte) (doc nt.Document, err error) {

	rdr := NewReader(bytes.NewReader(data))

	doc, err = readAll(rdr)
	return
}

// ReadFile parses the document at path.
func ReadFile(path string) (doc nt.Document, err error) {

	file, err := os.Open(path)
	if err != nil {
		err = errors.Wrapf(nt.ErrIO, "failed to open %s: %s", path, err)
		return
	}
	defer file.Close()

	doc, err = readAll(NewReader(file))
	err = errors.Wrapf(err, "failed to read %s", path)
	return
}

// unexported

func (rdr *Reader) readQuoted(char byte) (err error) {

	if char != '"' {
		rdr.field.WriteByte(char)
		return
	}

	next, err := rdr.src.ReadByte()
	switch {
	case err == io.EOF:
		rdr.state = unquoted
		err = nil
		return
	case err != nil:
		err = errors.Wrapf(nt.ErrIO, "failed to read: %s", err)
		return
	case next == '"':
		rdr.field.WriteByte('"')
		return
	}

	// closing quote, the peeked char is handled as freshly read
	rdr.state = unquoted
	err = rdr.src.UnreadByte()
	err = errors.Wrapf(err, "failed to unread")
	return
}

func (rdr *Reader) endField() {

	rdr.row = append(rdr.row, rdr.field.String())
	rdr.field.Reset()
}

func (rdr *Reader) endRecord() (record nt.Record) {

	rdr.endField()
	record = rdr.row
	rdr.row = nil
	return
}

func readAll(rdr *Reader) (doc nt.Document, err error) {

	doc.Header = nt.Record{}

	var records []nt.Record
	for {
		var record nt.Record
		record, err = rdr.Read()
		if err == io.EOF {
			err = nil
			break
		}
		if err != nil {
			return
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return
	}

	doc.Header = records[0]
	doc.Records = records[1:]
	return
}
