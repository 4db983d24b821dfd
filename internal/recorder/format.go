// internal/recorder/format.go
package recorder

import (
	"strconv"
	"strings"
)

// FormatValue renders one sampled value as text.
// Failed samples render empty.
func FormatValue(v any, err error) string {
	if err != nil || v == nil {
		return ""
	}
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', 3, 64)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case string:
		return x
	case []string:
		return strings.Join(x, ";")
	default:
		return ""
	}
}

// Document is the JSON shape pushed by feed sinks.
type Document struct {
	At     string            `json:"at"`
	Health string            `json:"health"`
	Values map[string]any    `json:"values"`
	Errors map[string]string `json:"errors,omitempty"`
}

// NewDocument builds the JSON document of a row. Failed samples are null
// with their error text kept aside.
func NewDocument(row Row) Document {
	d := Document{
		At:     row.At.Format("2006-01-02T15:04:05.000Z07:00"),
		Health: healthName(row),
		Values: make(map[string]any, len(row.Values)),
	}
	for _, v := range row.Values {
		if v.Err != nil {
			d.Values[v.Name] = nil
			if d.Errors == nil {
				d.Errors = make(map[string]string)
			}
			d.Errors[v.Name] = v.Err.Error()
			continue
		}
		d.Values[v.Name] = v.Value
	}
	return d
}
