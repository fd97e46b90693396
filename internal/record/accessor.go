package record

import "strings"

// Placeholders used by the two output media.
const (
	ViewPlaceholder = "Não especificado"
	TextPlaceholder = "N/A"
)

// Accessor reads fields by path and substitutes Placeholder for anything
// that is missing. Only shape mismatches are reported as errors.
type Accessor struct {
	Placeholder string
}

// Text returns the scalar at path, or the placeholder.
func (a Accessor) Text(n Node, path string) (string, error) {
	v, err := n.At(path)
	if err != nil {
		return a.Placeholder, err
	}
	s, ok, err := v.Text()
	if err != nil {
		return a.Placeholder, err
	}
	if !ok {
		return a.Placeholder, nil
	}
	return s, nil
}

// Strings returns the list of scalars at path. A missing or empty list
// yields a single placeholder item.
func (a Accessor) Strings(n Node, path string) ([]string, error) {
	v, err := n.At(path)
	if err != nil {
		return []string{a.Placeholder}, err
	}
	items, err := v.Items()
	if err != nil {
		return []string{a.Placeholder}, err
	}
	if len(items) == 0 {
		return []string{a.Placeholder}, nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok, err := item.Text()
		if err != nil {
			return []string{a.Placeholder}, err
		}
		if !ok {
			s = a.Placeholder
		}
		out = append(out, s)
	}
	return out, nil
}

// Nodes returns the elements of the array at path. ok is false when the
// list is missing or empty.
func (a Accessor) Nodes(n Node, path string) (items []Node, ok bool, err error) {
	v, err := n.At(path)
	if err != nil {
		return nil, false, err
	}
	items, err = v.Items()
	if err != nil {
		return nil, false, err
	}
	return items, len(items) > 0, nil
}

// Entries returns the members of the object at path in delivered order.
// ok is false when the mapping is missing or empty.
func (a Accessor) Entries(n Node, path string) (entries []Entry, ok bool, err error) {
	v, err := n.At(path)
	if err != nil {
		return nil, false, err
	}
	entries, err = v.Entries()
	if err != nil {
		return nil, false, err
	}
	return entries, len(entries) > 0, nil
}

// Joined reads a field that may arrive either as a list of strings or as
// an already comma-joined string. Lists are joined with ", ", strings
// are returned unchanged.
func (a Accessor) Joined(n Node, path string) (string, error) {
	v, err := n.At(path)
	if err != nil {
		return a.Placeholder, err
	}
	if v.IsArray() {
		parts, err := a.Strings(v, "")
		if err != nil {
			return a.Placeholder, err
		}
		return strings.Join(parts, ", "), nil
	}
	return a.Text(v, "")
}
