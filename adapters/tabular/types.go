package tabular

import "context"

// Row is one data row keyed by trimmed header name
type Row map[string]string

// Table is a header plus string-valued rows, before any type coercion
type Table struct {
	Headers []string
	Rows    []Row
}

// HasColumn reports whether the header contains name
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Reader produces a Table from some tabular source
type Reader interface {
	Read(ctx context.Context) (*Table, error)
	// Describe names the source for logs and the dataset handle
	Describe() string
}
