package draft_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/aggregates/draft"
	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/entities/formvariant"
	"github.com/aquaops/pond-miniapp/pkg/rowlist"
)

func variant(t *testing.T, key string) *formvariant.Variant {
	t.Helper()
	v, err := formvariant.Get(key)
	require.NoError(t, err)
	return v
}

func TestDraft_SetField(t *testing.T) {
	d := draft.New(7, variant(t, formvariant.KeyFishStocking))

	require.NoError(t, d.SetField("type", "Карп"))
	require.NoError(t, d.SetField("kg", "12,5"))
	require.ErrorIs(t, d.SetField("kg", "12,5,"), draft.ErrInputRejected)
	require.ErrorIs(t, d.SetField("colour", "red"), formvariant.ErrUnknownField)

	assert.Equal(t, map[string]string{"type": "Карп", "kg": "12,5"}, d.Values())
	assert.Nil(t, d.Rows())

	require.NoError(t, d.SetField("kg", ""))
	assert.Equal(t, map[string]string{"type": "Карп"}, d.Values())
}

func TestDraft_MeasurementTypeChangeClears(t *testing.T) {
	d := draft.New(7, variant(t, formvariant.KeyMeasurement))

	require.NoError(t, d.SetField("type", "kgs"))
	require.NoError(t, d.UpdateRow(1, rowlist.ValueField, "3"))
	require.Len(t, d.Rows(), 2)

	require.NoError(t, d.SetField("type", "kgs"))
	assert.Len(t, d.Rows(), 2, "same type keeps the weights")

	require.NoError(t, d.SetField("type", "c"))
	require.NoError(t, d.SetField("value", "18"))
	assert.Len(t, d.Rows(), 1)
	assert.Equal(t, 1, d.Rows()[0].ID)

	require.NoError(t, d.SetField("type", "pH"))
	assert.Equal(t, map[string]string{"type": "pH"}, d.Values())
}

func TestDraft_Rows(t *testing.T) {
	d := draft.New(7, variant(t, formvariant.KeyDeathReport))

	require.NoError(t, d.UpdateRow(1, "type", "Карп"))
	require.Len(t, d.Rows(), 1)
	require.NoError(t, d.UpdateRow(1, "kg", "2"))
	require.Len(t, d.Rows(), 2)

	require.ErrorIs(t, d.UpdateRow(2, "kg", "abc"), draft.ErrInputRejected)
	require.ErrorIs(t, d.UpdateRow(99, "kg", "1"), rowlist.ErrRowNotFound)
	require.ErrorIs(t, d.UpdateRow(1, "weight", "1"), rowlist.ErrUnknownField)

	removed, err := d.BlurRow(2)
	require.NoError(t, err)
	assert.False(t, removed, "the only blank row is the pending slot")

	require.NoError(t, d.RemoveRow(1))
	assert.Equal(t, 2, d.Rows()[0].ID)
	assert.Equal(t, 2, d.LastRowID())
}

func TestDraft_RowsOnScalarForm(t *testing.T) {
	d := draft.New(7, variant(t, formvariant.KeySales))
	require.ErrorIs(t, d.UpdateRow(1, "value", "1"), draft.ErrNoRows)
	_, err := d.BlurRow(1)
	require.ErrorIs(t, err, draft.ErrNoRows)
	require.ErrorIs(t, d.RemoveRow(1), draft.ErrNoRows)
}

func TestDraft_ResetAndInput(t *testing.T) {
	d := draft.New(7, variant(t, formvariant.KeyControlCatch))
	require.NoError(t, d.UpdateRow(1, rowlist.ValueField, "3"))
	require.NoError(t, d.UpdateRow(2, rowlist.ValueField, "4,5"))

	shared := draft.NewShared(7, "2024-05-01", "Pond A")
	in := d.Input(shared)
	assert.Equal(t, "2024-05-01", in.Date)
	assert.Equal(t, "Pond A", in.Location)
	assert.Len(t, in.Rows, 3)

	d.Reset()
	require.Len(t, d.Rows(), 1)
	assert.Equal(t, 1, d.Rows()[0].ID)
	assert.Empty(t, d.Values())
}

func TestDraft_Restore(t *testing.T) {
	v := variant(t, formvariant.KeyControlCatch)
	d := draft.New(7, v,
		draft.WithValues(map[string]string{"bogus": "x"}),
		draft.WithRows([]rowlist.Row{{ID: 4, Values: map[string]string{"value": "1"}}, {ID: 6, Values: map[string]string{"value": ""}}}, 6),
	)
	assert.Empty(t, d.Values())
	assert.Equal(t, 6, d.LastRowID())

	require.NoError(t, d.UpdateRow(6, rowlist.ValueField, "2"))
	rows := d.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, 7, rows[2].ID)
}

func TestShared(t *testing.T) {
	s := draft.NewShared(7, "", "")
	assert.Equal(t, draft.Today(), s.Date())

	next, err := s.SetDate("2024-02-30")
	require.ErrorIs(t, err, draft.ErrInvalidDate)
	assert.Equal(t, s, next)

	next, err = s.SetDate("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", next.Date())
	assert.Equal(t, draft.Today(), s.Date(), "shared values are copied on write")

	next, err = next.SetDate("")
	require.NoError(t, err)
	assert.Empty(t, next.Date())

	assert.Equal(t, "Pond A", next.SetLocation(" Pond A ").Location())
}
