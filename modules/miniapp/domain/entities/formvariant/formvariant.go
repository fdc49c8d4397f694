// Package formvariant describes the record-entry forms of the mini app.
//
// Every form is the same machine: a date and pond shared across forms, some
// scalar fields and optionally one repeating row list. A Variant holds the
// configuration that differs between forms: fields, required and numeric
// rules, user facing messages and how the backend payload is assembled.
package formvariant

import (
	"errors"
	"strings"

	"github.com/aquaops/pond-miniapp/pkg/backend"
	"github.com/aquaops/pond-miniapp/pkg/numeric"
	"github.com/aquaops/pond-miniapp/pkg/rowlist"
)

var (
	ErrUnknownVariant = errors.New("unknown form variant")
	ErrUnknownField   = errors.New("unknown form field")
)

const (
	FieldDate     = "date"
	FieldLocation = "location"
	FieldRows     = "rows"
)

type Kind string

const (
	KindText            Kind = "text"
	KindFishType        Kind = "fish-type"
	KindMeasurementType Kind = "measurement-type"
	KindNumber          Kind = "number"
	KindPositive        Kind = "positive-number"
)

func (k Kind) Numeric() bool {
	return k == KindNumber || k == KindPositive
}

// parse applies the numeric rule of the kind to raw.
func (k Kind) parse(raw string) (float64, error) {
	if k == KindPositive {
		return numeric.ParsePositive(raw)
	}
	return numeric.Parse(raw)
}

// Accepts is the typing filter: positive numeric inputs only take digits and
// one separator. Other kinds accept anything.
func (k Kind) Accepts(raw string) bool {
	if k != KindPositive {
		return true
	}
	_, ok := numeric.Filter(raw)
	return ok
}

// Predicate decides from the current scalar values whether a field or the
// row list takes part in the form.
type Predicate func(values map[string]string) bool

type Field struct {
	Name    string
	Label   string
	Kind    Kind
	Options []string

	Required       bool
	MissingMessage string
	InvalidMessage string

	// When is nil for fields that are always shown.
	When Predicate
	// Clears names the fields blanked when this field changes.
	Clears []string
	// ClearsRows resets the row list when this field changes.
	ClearsRows bool
}

func (f Field) active(values map[string]string) bool {
	return f.When == nil || f.When(values)
}

type RowSpec struct {
	Schema rowlist.Schema
	Kinds  map[string]Kind
	Labels map[string]string

	MissingMessage string
	InvalidMessage string

	When Predicate
}

func (r *RowSpec) Kind(field string) Kind {
	if k, ok := r.Kinds[field]; ok {
		return k
	}
	return KindText
}

func (r *RowSpec) active(values map[string]string) bool {
	return r != nil && (r.When == nil || r.When(values))
}

type Variant struct {
	Key      string
	Title    string
	Endpoint string
	Fields   []Field
	Rows     *RowSpec

	// AnyOfMessage is set on forms whose fields are all optional but at
	// least one of them must be filled.
	AnyOfMessage   string
	InvalidMessage string

	build func(p Prepared) backend.Submission
}

func (v *Variant) Field(name string) (Field, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// RowsActive reports whether the row list currently takes part in the form.
func (v *Variant) RowsActive(values map[string]string) bool {
	return v.Rows.active(values)
}

// FieldActive reports whether the named scalar field currently takes part in
// the form.
func (v *Variant) FieldActive(name string, values map[string]string) bool {
	f, ok := v.Field(name)
	return ok && f.active(values)
}

// NewRowList returns the initial row list of the variant, or nil for forms
// without rows.
func (v *Variant) NewRowList() *rowlist.List {
	if v.Rows == nil {
		return nil
	}
	return rowlist.New(v.Rows.Schema)
}

// Input is a draft at submission time.
type Input struct {
	Date     string
	Location string
	Values   map[string]string
	Rows     []rowlist.Row
}

// Values are the trimmed strings and parsed numbers of one record.
type Values struct {
	Text    map[string]string
	Numbers map[string]float64
}

func newValues() Values {
	return Values{Text: map[string]string{}, Numbers: map[string]float64{}}
}

func (v Values) String(name string) string {
	return v.Text[name]
}

func (v Values) Number(name string) float64 {
	return v.Numbers[name]
}

// Canonical returns the normalized decimal text of a numeric value, or ""
// when it was omitted.
func (v Values) Canonical(name string) string {
	s, err := numeric.Canonical(v.Text[name])
	if err != nil {
		return ""
	}
	return s
}

// Prepared is a validated, normalized draft ready for payload assembly.
type Prepared struct {
	Date     string
	Location string
	Fields   Values
	Rows     []Values
}

// ValidationError is the first failing check of a submission.
type ValidationError struct {
	Field     string
	MessageID string
	// Suggestions are close catalog entries for a value that did not match.
	Suggestions []string
}

func (e *ValidationError) Error() string {
	return "validation failed on " + e.Field + ": " + e.MessageID
}

func invalid(field, messageID string) *ValidationError {
	return &ValidationError{Field: field, MessageID: messageID}
}

// Prepare validates in with the fixed fail-fast order (location, date,
// required fields, numeric fields) and assembles the backend payload from
// the complete rows only.
func (v *Variant) Prepare(in Input) (backend.Submission, error) {
	location := strings.TrimSpace(in.Location)
	date := strings.TrimSpace(in.Date)
	if location == "" {
		return nil, invalid(FieldLocation, MsgLocationRequired)
	}
	if date == "" {
		return nil, invalid(FieldDate, MsgDateRequired)
	}

	values := in.Values
	if values == nil {
		values = map[string]string{}
	}
	rows := v.completeRows(in.Rows, values)

	if err := v.checkRequired(values, rows); err != nil {
		return nil, err
	}

	prepared := Prepared{Date: date, Location: location, Fields: newValues()}
	for _, f := range v.Fields {
		if !f.active(values) {
			continue
		}
		raw := strings.TrimSpace(values[f.Name])
		prepared.Fields.Text[f.Name] = raw
		if !f.Kind.Numeric() || raw == "" {
			continue
		}
		n, err := f.Kind.parse(raw)
		if err != nil {
			return nil, invalid(f.Name, v.invalidMessage(f.InvalidMessage))
		}
		prepared.Fields.Numbers[f.Name] = n
	}

	for _, row := range rows {
		parsed := newValues()
		for _, name := range v.Rows.Schema.Fields {
			raw := strings.TrimSpace(row.Get(name))
			parsed.Text[name] = raw
			kind := v.Rows.Kind(name)
			if !kind.Numeric() || raw == "" {
				continue
			}
			n, err := kind.parse(raw)
			if err != nil {
				return nil, invalid(FieldRows, v.invalidMessage(v.Rows.InvalidMessage))
			}
			parsed.Numbers[name] = n
		}
		prepared.Rows = append(prepared.Rows, parsed)
	}

	return v.build(prepared), nil
}

func (v *Variant) checkRequired(values map[string]string, rows []rowlist.Row) error {
	anyFilled := false
	for _, f := range v.Fields {
		if !f.active(values) {
			continue
		}
		blank := numeric.IsBlank(values[f.Name])
		if !blank {
			anyFilled = true
		}
		if f.Required && blank {
			return invalid(f.Name, f.MissingMessage)
		}
	}
	if v.AnyOfMessage != "" && !anyFilled {
		return invalid(v.Fields[0].Name, v.AnyOfMessage)
	}
	if v.Rows.active(values) && len(rows) == 0 {
		return invalid(FieldRows, v.Rows.MissingMessage)
	}
	return nil
}

func (v *Variant) completeRows(rows []rowlist.Row, values map[string]string) []rowlist.Row {
	if !v.Rows.active(values) {
		return nil
	}
	required := v.Rows.Schema.Required
	if len(required) == 0 {
		required = v.Rows.Schema.Fields
	}
	out := make([]rowlist.Row, 0, len(rows))
	for _, row := range rows {
		complete := true
		for _, name := range required {
			if numeric.IsBlank(row.Get(name)) {
				complete = false
				break
			}
		}
		if complete {
			out = append(out, row)
		}
	}
	return out
}

func (v *Variant) invalidMessage(id string) string {
	if id != "" {
		return id
	}
	return v.InvalidMessage
}
