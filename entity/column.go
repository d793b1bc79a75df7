package entity

// Column configures display of a field by header name.
type Column struct {
	Field  string `yaml:"field"`
	Width  int    `yaml:"width"`
	Hidden bool   `yaml:"hidden,omitempty"`
}
