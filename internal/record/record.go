package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"
)

// Section keys of an AnalysisRecord, in report order.
const (
	Escopo        = "escopo"
	Avatar        = "avatar"
	DoresDesejos  = "dores_desejos"
	Concorrencia  = "concorrencia"
	Mercado       = "mercado"
	PalavrasChave = "palavras_chave"
	Metricas      = "metricas"
	VozMercado    = "voz_mercado"
	Projecoes     = "projecoes"
	PlanoAcao     = "plano_acao"
)

// SectionKeys lists the ten top-level sections in report order.
var SectionKeys = []string{
	Escopo, Avatar, DoresDesejos, Concorrencia, Mercado,
	PalavrasChave, Metricas, VozMercado, Projecoes, PlanoAcao,
}

// MalformedInputError reports a value whose shape is incompatible with
// what the reader expected at that path.
type MalformedInputError struct {
	Path string
	Want string
	Got  string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input at %s: expected %s, got %s", e.Path, e.Want, e.Got)
}

// AnalysisRecord is an immutable analysis snapshot as delivered by the
// analysis collaborator. Every section, and every field inside a
// section, is optional.
type AnalysisRecord struct {
	root Node
}

// Parse validates data as a JSON object and returns a record holding a
// private copy of it.
func Parse(data []byte) (AnalysisRecord, error) {
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return AnalysisRecord{}, &MalformedInputError{Path: "$", Want: "object", Got: "invalid json"}
	}
	raw := append([]byte(nil), data...)
	_, typ, _, err := jsonparser.Get(raw)
	if err != nil {
		return AnalysisRecord{}, &MalformedInputError{Path: "$", Want: "object", Got: err.Error()}
	}
	if typ != jsonparser.Object {
		n := Node{typ: typ}
		return AnalysisRecord{}, &MalformedInputError{Path: "$", Want: "object", Got: n.Kind()}
	}
	return AnalysisRecord{root: newNode(raw, typ, "")}, nil
}

// MustParse is Parse for fixtures and literals; it panics on error.
func MustParse(data string) AnalysisRecord {
	rec, err := Parse([]byte(data))
	if err != nil {
		panic(err)
	}
	return rec
}

// Assemble builds a record from independently stored section blobs.
// Sections absent from blobs, or stored as null, are left out.
func Assemble(blobs map[string][]byte) (AnalysisRecord, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, key := range SectionKeys {
		blob := bytes.TrimSpace(blobs[key])
		if len(blob) == 0 || bytes.Equal(blob, []byte("null")) {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		fmt.Fprintf(&buf, "%q:", key)
		buf.Write(blob)
	}
	buf.WriteByte('}')
	return Parse(buf.Bytes())
}

// Root returns the record's root object.
func (r AnalysisRecord) Root() Node { return r.root }

// IsZero reports whether the record was never parsed.
func (r AnalysisRecord) IsZero() bool { return r.root.raw == nil }

// Section returns the top-level section stored under key.
func (r AnalysisRecord) Section(key string) Node {
	n, err := r.root.Key(key)
	if err != nil {
		// root is always an object, only a corrupt member can fail here
		return Node{path: key}
	}
	return n
}

// SectionJSON returns the raw JSON of a section; ok is false when the
// section is absent or null.
func (r AnalysisRecord) SectionJSON(key string) (json.RawMessage, bool) {
	n := r.Section(key)
	if n.Missing() {
		return nil, false
	}
	return json.RawMessage(n.JSON()), true
}

// Bytes returns a copy of the record JSON.
func (r AnalysisRecord) Bytes() []byte {
	return append([]byte(nil), r.root.raw...)
}

func (r AnalysisRecord) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	return r.Bytes(), nil
}

func (r *AnalysisRecord) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = AnalysisRecord{}
		return nil
	}
	rec, err := Parse(data)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}
