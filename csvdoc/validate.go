package csvdoc

import (
	"github.com/pkg/errors"

	nt "logtab/entity"
)

// Validate checks that the header is present and every record matches its arity.
// The first offending record aborts validation.
func Validate(doc nt.Document) (err error) {

	if len(doc.Header) == 0 {
		err = errors.Wrapf(nt.ErrMalformedDocument, "empty csv file/header")
		return
	}

	for i, record := range doc.Records {
		if len(record) != len(doc.Header) {
			err = errors.Wrapf(nt.ErrMalformedDocument,
				"record %d has %d fields, header has %d: %q", i+1, len(record), len(doc.Header), []string(record))
			return
		}
	}
	return
}
