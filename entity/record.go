package entity

// Conventional field positions of a converted log.
const (
	LineId = iota
	Time
	Level
	Content
	EventId
	Template
)

// Record is one parsed row; its arity is fixed per document by the header.
type Record []string

// Document is a header plus the records following it.
type Document struct {
	Header  Record
	Records []Record
}

// Table is the display shape of a document.
type Table struct {
	Header   Record   `json:"header" yaml:"header"`
	Records  []Record `json:"data" yaml:"data"`
	Filtered bool     `json:"filtered" yaml:"filtered"`
}
