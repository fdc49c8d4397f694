package formvariant_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/entities/formvariant"
	"github.com/aquaops/pond-miniapp/pkg/backend"
	"github.com/aquaops/pond-miniapp/pkg/rowlist"
)

func mustVariant(t *testing.T, key string) *formvariant.Variant {
	t.Helper()
	v, err := formvariant.Get(key)
	require.NoError(t, err)
	return v
}

func rows(values ...map[string]string) []rowlist.Row {
	out := make([]rowlist.Row, 0, len(values))
	for i, v := range values {
		out = append(out, rowlist.Row{ID: i + 1, Values: v})
	}
	return out
}

func requireInvalid(t *testing.T, err error, field, messageID string) {
	t.Helper()
	var verr *formvariant.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, field, verr.Field)
	assert.Equal(t, messageID, verr.MessageID)
}

func TestRegistry(t *testing.T) {
	keys := make([]string, 0)
	for _, v := range formvariant.All() {
		keys = append(keys, v.Key)
	}
	assert.Equal(t, []string{
		formvariant.KeyMain,
		formvariant.KeyControlCatch,
		formvariant.KeySales,
		formvariant.KeyFishStocking,
		formvariant.KeyDeathReport,
		formvariant.KeyMeasurement,
	}, keys)

	_, err := formvariant.Get("harvest")
	require.ErrorIs(t, err, formvariant.ErrUnknownVariant)
}

func TestPrepare_ControlCatchDropsBlankRows(t *testing.T) {
	v := mustVariant(t, formvariant.KeyControlCatch)

	payload, err := v.Prepare(formvariant.Input{
		Date:     "2024-05-01",
		Location: "Pond A",
		Rows: rows(
			map[string]string{"value": "3"},
			map[string]string{"value": "4,5"},
			map[string]string{"value": ""},
		),
	})
	require.NoError(t, err)
	assert.Equal(t, backend.ControlCatchPayload{
		Date:     "2024-05-01",
		Location: "Pond A",
		CatchKGs: []float64{3, 4.5},
	}, payload)
}

func TestPrepare_ControlCatchRejectsOverflow(t *testing.T) {
	v := mustVariant(t, formvariant.KeyControlCatch)

	payload, err := v.Prepare(formvariant.Input{
		Date:     "2024-05-01",
		Location: "Pond A",
		Rows: rows(
			map[string]string{"value": "3"},
			map[string]string{"value": "1" + strings.Repeat("0", 400)},
		),
	})
	assert.Nil(t, payload)
	requireInvalid(t, err, formvariant.FieldRows, formvariant.MsgNumbersInvalid)
}

func TestPrepare_ValidationOrder(t *testing.T) {
	v := mustVariant(t, formvariant.KeyFishStocking)

	tests := []struct {
		name      string
		in        formvariant.Input
		field     string
		messageID string
	}{
		{
			name:      "location first",
			in:        formvariant.Input{Values: map[string]string{"kg": "abc"}},
			field:     formvariant.FieldLocation,
			messageID: formvariant.MsgLocationRequired,
		},
		{
			name:      "then date",
			in:        formvariant.Input{Location: "P1", Date: " "},
			field:     formvariant.FieldDate,
			messageID: formvariant.MsgDateRequired,
		},
		{
			name:      "then fish type",
			in:        formvariant.Input{Location: "P1", Date: "2024-05-01", Values: map[string]string{"kg": "x"}},
			field:     "type",
			messageID: formvariant.MsgFishTypeRequired,
		},
		{
			name:      "required before numeric",
			in:        formvariant.Input{Location: "P1", Date: "2024-05-01", Values: map[string]string{"type": "Карп", "kg": "x"}},
			field:     "quantity",
			messageID: formvariant.MsgQuantityRequired,
		},
		{
			name:      "invalid weight",
			in:        formvariant.Input{Location: "P1", Date: "2024-05-01", Values: map[string]string{"type": "Карп", "kg": "0", "quantity": "10"}},
			field:     "kg",
			messageID: formvariant.MsgWeightInvalid,
		},
		{
			name:      "invalid quantity",
			in:        formvariant.Input{Location: "P1", Date: "2024-05-01", Values: map[string]string{"type": "Карп", "kg": "1,5", "quantity": "-2"}},
			field:     "quantity",
			messageID: formvariant.MsgQuantityInvalid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Prepare(tt.in)
			requireInvalid(t, err, tt.field, tt.messageID)
		})
	}
}

func TestPrepare_FishStockingAndSales(t *testing.T) {
	values := map[string]string{"type": " Карп ", "kg": "12,5", "quantity": "300"}

	payload, err := mustVariant(t, formvariant.KeyFishStocking).Prepare(formvariant.Input{
		Date: "2024-05-01", Location: "P1", Values: values,
	})
	require.NoError(t, err)
	assert.Equal(t, backend.FishStockingPayload{
		Date: "2024-05-01", Location: "P1", Type: "Карп", KG: 12.5, Quantity: 300,
	}, payload)

	payload, err = mustVariant(t, formvariant.KeySales).Prepare(formvariant.Input{
		Date: "2024-05-01", Location: "P1", Values: values,
	})
	require.NoError(t, err)
	assert.Equal(t, backend.SalesPayload{
		Date: "2024-05-01", Location: "P1", Type: "Карп", KG: 12.5, Quantity: 300,
	}, payload)
}

func TestPrepare_MainForm(t *testing.T) {
	v := mustVariant(t, formvariant.KeyMain)

	_, err := v.Prepare(formvariant.Input{Date: "2024-05-01", Location: "P1"})
	requireInvalid(t, err, "oxygen", formvariant.MsgAnyValue)

	_, err = v.Prepare(formvariant.Input{Date: "2024-05-01", Location: "P1", Values: map[string]string{"pH": "seven"}})
	requireInvalid(t, err, "pH", formvariant.MsgNumbersInvalid)

	payload, err := v.Prepare(formvariant.Input{
		Date:     "2024-05-01",
		Location: "P1",
		Values:   map[string]string{"temperature": "-1,5", "pH": "7.20", "feed": "0"},
	})
	require.NoError(t, err)
	assert.Equal(t, backend.MainFormPayload{
		Date:        "2024-05-01",
		Location:    "P1",
		Temperature: "-1.5",
		PH:          "7.2",
		Feed:        "0",
	}, payload)
}

func TestPrepare_DeathReport(t *testing.T) {
	v := mustVariant(t, formvariant.KeyDeathReport)

	_, err := v.Prepare(formvariant.Input{
		Date:     "2024-05-01",
		Location: "P1",
		Rows:     rows(map[string]string{"type": "Карп", "kg": ""}, map[string]string{"type": "", "kg": ""}),
	})
	requireInvalid(t, err, formvariant.FieldRows, formvariant.MsgRecordsRequired)

	_, err = v.Prepare(formvariant.Input{
		Date:     "2024-05-01",
		Location: "P1",
		Rows:     rows(map[string]string{"type": "Карп", "kg": "0"}),
	})
	requireInvalid(t, err, formvariant.FieldRows, formvariant.MsgWeightInvalid)

	payload, err := v.Prepare(formvariant.Input{
		Date:     "2024-05-01",
		Location: "P1",
		Rows: rows(
			map[string]string{"type": "Карп", "kg": "2,5"},
			map[string]string{"type": "Толстолобик", "kg": ""},
			map[string]string{"type": "Амур", "kg": "1"},
		),
	})
	require.NoError(t, err)
	assert.Equal(t, backend.DeathReportPayload{
		Date:     "2024-05-01",
		Location: "P1",
		Data: []backend.DeathRecord{
			{Type: "Карп", KG: 2.5},
			{Type: "Амур", KG: 1},
		},
	}, payload)
}

func TestPrepare_Measurement(t *testing.T) {
	v := mustVariant(t, formvariant.KeyMeasurement)

	_, err := v.Prepare(formvariant.Input{Date: "2024-05-01", Location: "P1"})
	requireInvalid(t, err, "type", formvariant.MsgRequiredFields)

	_, err = v.Prepare(formvariant.Input{Date: "2024-05-01", Location: "P1", Values: map[string]string{"type": "c"}})
	requireInvalid(t, err, "value", formvariant.MsgValueRequired)

	payload, err := v.Prepare(formvariant.Input{
		Date: "2024-05-01", Location: "P1", Values: map[string]string{"type": "c", "value": "18,5"},
	})
	require.NoError(t, err)
	assert.Equal(t, backend.MeasurementPayload{Date: "2024-05-01", Location: "P1", Type: "c", Value: "18.5"}, payload)

	_, err = v.Prepare(formvariant.Input{
		Date: "2024-05-01", Location: "P1", Values: map[string]string{"type": "kgs"},
		Rows: rows(map[string]string{"value": ""}),
	})
	requireInvalid(t, err, formvariant.FieldRows, formvariant.MsgWeightsRequired)

	payload, err = v.Prepare(formvariant.Input{
		Date: "2024-05-01", Location: "P1", Values: map[string]string{"type": "kgs", "value": "ignored"},
		Rows: rows(map[string]string{"value": "1,2"}, map[string]string{"value": "3"}, map[string]string{"value": ""}),
	})
	require.NoError(t, err)
	assert.Equal(t, backend.MeasurementPayload{Date: "2024-05-01", Location: "P1", Type: "kgs", Value: "1.2, 3"}, payload)
}

func TestKindAccepts(t *testing.T) {
	assert.True(t, formvariant.KindPositive.Accepts("12,5"))
	assert.True(t, formvariant.KindPositive.Accepts(""))
	assert.False(t, formvariant.KindPositive.Accepts("1.2.3"))
	assert.False(t, formvariant.KindPositive.Accepts("-1"))
	assert.True(t, formvariant.KindNumber.Accepts("-1"))
}
