package cmake

import "strings"

// Definitions is an insertion-ordered set of preprocessor definitions that is
// folded into a single DEFINITIONS=... cache entry at configure time.
//
// The zero value is ready to use. Names and values are passed through as-is.
type Definitions struct {
	names  []string
	values map[string]string
}

// NewDefinitions returns an empty Definitions.
func NewDefinitions() *Definitions {
	return &Definitions{values: make(map[string]string)}
}

// Add sets name to value. Re-adding an existing name keeps its position.
func (d *Definitions) Add(name, value string) {
	if d.values == nil {
		d.values = make(map[string]string)
	}
	if _, ok := d.values[name]; !ok {
		d.names = append(d.names, name)
	}
	d.values[name] = value
}

// Remove deletes name. Unknown names are ignored.
func (d *Definitions) Remove(name string) {
	if _, ok := d.values[name]; !ok {
		return
	}
	delete(d.values, name)
	for i, n := range d.names {
		if n == name {
			d.names = append(d.names[:i], d.names[i+1:]...)
			break
		}
	}
}

// Clear removes every definition.
func (d *Definitions) Clear() {
	d.names = nil
	d.values = make(map[string]string)
}

func (d *Definitions) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}

// Get returns the value stored for name.
func (d *Definitions) Get(name string) (string, bool) {
	if d == nil {
		return "", false
	}
	v, ok := d.values[name]
	return v, ok
}

// String renders the composite option, e.g. "DEFINITIONS=SIMD=avx512;DEBUG=1;".
// A nil or empty set renders as "DEFINITIONS=".
func (d *Definitions) String() string {
	var sb strings.Builder
	sb.WriteString("DEFINITIONS=")
	if d == nil {
		return sb.String()
	}
	for _, name := range d.names {
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(d.values[name])
		sb.WriteByte(';')
	}
	return sb.String()
}

// ParseDefinition splits a "NAME=VALUE" flag. A bare NAME yields an empty value.
func ParseDefinition(s string) (name, value string) {
	name, value, _ = strings.Cut(s, "=")
	return strings.TrimSpace(name), value
}
