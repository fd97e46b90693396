package record

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
)

// Node is a read-only view of one value inside an AnalysisRecord.
// The zero Node is a missing value.
type Node struct {
	raw  []byte
	typ  jsonparser.ValueType
	path string
}

// Entry is one key/value pair of an object, in delivered order.
type Entry struct {
	Key   string
	Value Node
}

func newNode(raw []byte, typ jsonparser.ValueType, path string) Node {
	return Node{raw: raw, typ: typ, path: path}
}

// Path returns the dotted path of the node from the record root.
func (n Node) Path() string {
	if n.path == "" {
		return "$"
	}
	return n.path
}

// Kind names the JSON type of the node ("missing" for absent values).
func (n Node) Kind() string {
	switch n.typ {
	case jsonparser.NotExist:
		return "missing"
	case jsonparser.String:
		return "string"
	case jsonparser.Number:
		return "number"
	case jsonparser.Object:
		return "object"
	case jsonparser.Array:
		return "array"
	case jsonparser.Boolean:
		return "boolean"
	case jsonparser.Null:
		return "null"
	default:
		return "unknown"
	}
}

// Missing reports whether the value is absent or null.
func (n Node) Missing() bool {
	return n.typ == jsonparser.NotExist || n.typ == jsonparser.Null
}

func (n Node) IsObject() bool { return n.typ == jsonparser.Object }
func (n Node) IsArray() bool  { return n.typ == jsonparser.Array }
func (n Node) IsString() bool { return n.typ == jsonparser.String }

// IsScalar reports whether the node is a string, number or boolean.
func (n Node) IsScalar() bool {
	return n.typ == jsonparser.String || n.typ == jsonparser.Number || n.typ == jsonparser.Boolean
}

func (n Node) child(seg string) string {
	if n.path == "" {
		return seg
	}
	if strings.HasPrefix(seg, "[") {
		return n.path + seg
	}
	return n.path + "." + seg
}

// Key looks up a member of an object node. Looking up a key below a
// missing node yields a missing node; below any other non-object it is a
// MalformedInputError.
func (n Node) Key(key string) (Node, error) {
	path := n.child(key)
	if n.Missing() {
		return Node{path: path}, nil
	}
	if n.typ != jsonparser.Object {
		return Node{}, &MalformedInputError{Path: n.Path(), Want: "object", Got: n.Kind()}
	}
	value, typ, _, err := jsonparser.Get(n.raw, key)
	if err != nil {
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			return Node{path: path}, nil
		}
		return Node{}, &MalformedInputError{Path: path, Want: "json value", Got: err.Error()}
	}
	return newNode(value, typ, path), nil
}

// Index returns the i-th element of an array node.
func (n Node) Index(i int) (Node, error) {
	seg := "[" + strconv.Itoa(i) + "]"
	path := n.child(seg)
	if n.Missing() {
		return Node{path: path}, nil
	}
	if n.typ != jsonparser.Array {
		return Node{}, &MalformedInputError{Path: n.Path(), Want: "array", Got: n.Kind()}
	}
	value, typ, _, err := jsonparser.Get(n.raw, seg)
	if err != nil {
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			return Node{path: path}, nil
		}
		return Node{}, &MalformedInputError{Path: path, Want: "json value", Got: err.Error()}
	}
	return newNode(value, typ, path), nil
}

// At walks a dotted/indexed path such as "principais_dores[0].urgencia".
func (n Node) At(path string) (Node, error) {
	cur := n
	for _, seg := range splitPath(path) {
		var err error
		if strings.HasPrefix(seg, "[") {
			i, convErr := strconv.Atoi(strings.Trim(seg, "[]"))
			if convErr != nil {
				return Node{}, fmt.Errorf("invalid index %q in path %q", seg, path)
			}
			cur, err = cur.Index(i)
		} else {
			cur, err = cur.Key(seg)
		}
		if err != nil {
			return Node{}, err
		}
	}
	return cur, nil
}

// Text returns the display text of a scalar. Numbers and booleans are
// returned as their literal JSON text. ok is false when the value is
// missing or an empty string.
func (n Node) Text() (text string, ok bool, err error) {
	switch n.typ {
	case jsonparser.NotExist, jsonparser.Null:
		return "", false, nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(n.raw)
		if err != nil {
			return "", false, &MalformedInputError{Path: n.Path(), Want: "string", Got: err.Error()}
		}
		if strings.TrimSpace(s) == "" {
			return "", false, nil
		}
		return s, true, nil
	case jsonparser.Number, jsonparser.Boolean:
		return string(n.raw), true, nil
	default:
		return "", false, &MalformedInputError{Path: n.Path(), Want: "scalar", Got: n.Kind()}
	}
}

// Items returns the elements of an array node in source order.
func (n Node) Items() ([]Node, error) {
	if n.Missing() {
		return nil, nil
	}
	if n.typ != jsonparser.Array {
		return nil, &MalformedInputError{Path: n.Path(), Want: "array", Got: n.Kind()}
	}
	var (
		items []Node
		inner error
	)
	_, err := jsonparser.ArrayEach(n.raw, func(value []byte, typ jsonparser.ValueType, _ int, err error) {
		if err != nil {
			inner = err
			return
		}
		items = append(items, newNode(value, typ, n.child("["+strconv.Itoa(len(items))+"]")))
	})
	if err == nil {
		err = inner
	}
	if err != nil {
		return nil, &MalformedInputError{Path: n.Path(), Want: "array", Got: err.Error()}
	}
	return items, nil
}

// Entries returns the members of an object node in delivered order.
func (n Node) Entries() ([]Entry, error) {
	if n.Missing() {
		return nil, nil
	}
	if n.typ != jsonparser.Object {
		return nil, &MalformedInputError{Path: n.Path(), Want: "object", Got: n.Kind()}
	}
	var entries []Entry
	err := jsonparser.ObjectEach(n.raw, func(key, value []byte, typ jsonparser.ValueType, _ int) error {
		k := string(key)
		entries = append(entries, Entry{Key: k, Value: newNode(value, typ, n.child(k))})
		return nil
	})
	if err != nil {
		return nil, &MalformedInputError{Path: n.Path(), Want: "object", Got: err.Error()}
	}
	return entries, nil
}

// JSON returns the node re-encoded as a standalone JSON value.
func (n Node) JSON() []byte {
	switch n.typ {
	case jsonparser.NotExist:
		return nil
	case jsonparser.String:
		out := make([]byte, 0, len(n.raw)+2)
		out = append(out, '"')
		out = append(out, n.raw...)
		return append(out, '"')
	default:
		return append([]byte(nil), n.raw...)
	}
}

func splitPath(path string) []string {
	var segs []string
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			continue
		}
		for {
			open := strings.IndexByte(part, '[')
			if open < 0 {
				segs = append(segs, part)
				break
			}
			if open > 0 {
				segs = append(segs, part[:open])
			}
			end := strings.IndexByte(part[open:], ']')
			if end < 0 {
				segs = append(segs, part[open:])
				break
			}
			segs = append(segs, part[open:open+end+1])
			part = part[open+end+1:]
			if part == "" {
				break
			}
		}
	}
	return segs
}
