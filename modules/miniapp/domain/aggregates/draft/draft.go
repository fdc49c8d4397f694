package draft

import (
	"errors"
	"maps"
	"time"

	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/entities/formvariant"
	"github.com/aquaops/pond-miniapp/pkg/rowlist"
)

var (
	ErrDraftNotFound = errors.New("draft not found")
	ErrInputRejected = errors.New("input rejected by field filter")
	ErrNoRows        = errors.New("form has no row list")
)

// Draft is the unsubmitted state of one form of one operator. The shared
// date and pond live in Shared, not here.
type Draft interface {
	UserID() int64
	Variant() *formvariant.Variant
	Values() map[string]string
	Rows() []rowlist.Row
	LastRowID() int
	UpdatedAt() time.Time

	SetField(name, value string) error
	UpdateRow(id int, field, value string) error
	BlurRow(id int) (bool, error)
	RemoveRow(id int) error
	Reset()
	Input(shared Shared) formvariant.Input
}

type draft struct {
	userID    int64
	variant   *formvariant.Variant
	values    map[string]string
	rows      *rowlist.List
	updatedAt time.Time
}

type Option func(d *draft)

func WithValues(values map[string]string) Option {
	return func(d *draft) {
		for k, v := range values {
			if _, ok := d.variant.Field(k); ok {
				d.values[k] = v
			}
		}
	}
}

// WithRows restores a persisted row list; ignored for forms without rows.
func WithRows(rows []rowlist.Row, lastID int) Option {
	return func(d *draft) {
		if d.variant.Rows == nil {
			return
		}
		d.rows = rowlist.Restore(d.variant.Rows.Schema, rows, lastID)
	}
}

func WithUpdatedAt(t time.Time) Option {
	return func(d *draft) {
		if !t.IsZero() {
			d.updatedAt = t
		}
	}
}

// New returns a blank draft: empty fields and a fresh row list.
func New(userID int64, variant *formvariant.Variant, opts ...Option) Draft {
	d := &draft{
		userID:    userID,
		variant:   variant,
		values:    make(map[string]string, len(variant.Fields)),
		rows:      variant.NewRowList(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *draft) UserID() int64 {
	return d.userID
}

func (d *draft) Variant() *formvariant.Variant {
	return d.variant
}

func (d *draft) Values() map[string]string {
	return maps.Clone(d.values)
}

func (d *draft) Rows() []rowlist.Row {
	if d.rows == nil {
		return nil
	}
	return d.rows.Rows()
}

func (d *draft) LastRowID() int {
	if d.rows == nil {
		return 0
	}
	return d.rows.LastID()
}

func (d *draft) UpdatedAt() time.Time {
	return d.updatedAt
}

// SetField stores a scalar value. Positive numeric fields refuse anything but
// digits and one separator; the draft is left unchanged in that case.
func (d *draft) SetField(name, value string) error {
	f, ok := d.variant.Field(name)
	if !ok {
		return formvariant.ErrUnknownField
	}
	if !f.Kind.Accepts(value) {
		return ErrInputRejected
	}
	if d.values[name] != value {
		for _, other := range f.Clears {
			delete(d.values, other)
		}
		if f.ClearsRows && d.rows != nil {
			d.rows.Reset()
		}
	}
	if value == "" {
		delete(d.values, name)
	} else {
		d.values[name] = value
	}
	d.touch()
	return nil
}

func (d *draft) UpdateRow(id int, field, value string) error {
	if d.rows == nil {
		return ErrNoRows
	}
	if !d.rows.Schema().Has(field) {
		return rowlist.ErrUnknownField
	}
	if !d.variant.Rows.Kind(field).Accepts(value) {
		return ErrInputRejected
	}
	if err := d.rows.Update(id, field, value); err != nil {
		return err
	}
	d.touch()
	return nil
}

func (d *draft) BlurRow(id int) (bool, error) {
	if d.rows == nil {
		return false, ErrNoRows
	}
	removed, err := d.rows.Blur(id)
	if removed {
		d.touch()
	}
	return removed, err
}

func (d *draft) RemoveRow(id int) error {
	if d.rows == nil {
		return ErrNoRows
	}
	if err := d.rows.Remove(id); err != nil {
		return err
	}
	d.touch()
	return nil
}

// Reset clears every form specific value after a successful submission.
func (d *draft) Reset() {
	d.values = make(map[string]string, len(d.variant.Fields))
	if d.rows != nil {
		d.rows.Reset()
	}
	d.touch()
}

func (d *draft) Input(shared Shared) formvariant.Input {
	return formvariant.Input{
		Date:     shared.Date(),
		Location: shared.Location(),
		Values:   d.Values(),
		Rows:     d.Rows(),
	}
}

func (d *draft) touch() {
	d.updatedAt = time.Now()
}
