package formvariant

import (
	"strings"

	"github.com/aquaops/pond-miniapp/pkg/backend"
	"github.com/aquaops/pond-miniapp/pkg/rowlist"
)

const (
	KeyMain         = "main"
	KeyControlCatch = "control-catch"
	KeySales        = "sales"
	KeyFishStocking = "fish-stocking"
	KeyDeathReport  = "death-report"
	KeyMeasurement  = "measurement"
)

// Message ids shared by several forms.
const (
	MsgLocationRequired = "Forms.Errors.LocationRequired"
	MsgDateRequired     = "Forms.Errors.DateRequired"
	MsgFishTypeRequired = "Forms.Errors.FishTypeRequired"
	MsgWeightRequired   = "Forms.Errors.WeightRequired"
	MsgQuantityRequired = "Forms.Errors.QuantityRequired"
	MsgWeightInvalid    = "Forms.Errors.WeightInvalid"
	MsgQuantityInvalid  = "Forms.Errors.QuantityInvalid"
	MsgNumbersInvalid   = "Forms.Errors.NumbersInvalid"
	MsgAnyValue         = "Forms.Errors.AnyValueRequired"
	MsgWeightsRequired  = "Forms.Errors.WeightsRequired"
	MsgRecordsRequired  = "Forms.Errors.RecordsRequired"
	MsgRequiredFields   = "Forms.Errors.RequiredFields"
	MsgValueRequired    = "Forms.Errors.ValueRequired"
	MsgValueInvalid     = "Forms.Errors.ValueInvalid"
	MsgLocationUnknown  = "Forms.Errors.LocationUnknown"
	MsgFishTypeUnknown  = "Forms.Errors.FishTypeUnknown"
	MsgDateInvalid      = "Forms.Errors.DateInvalid"
)

// Measurement types of the single-measurement form.
const (
	MeasurementTemperature = "c"
	MeasurementFeed        = "kg"
	MeasurementOxygen      = "tara"
	MeasurementFishWeight  = "kgs"
	MeasurementSaturation  = "saturation"
	MeasurementPH          = "pH"
)

var MeasurementTypes = []string{
	MeasurementTemperature,
	MeasurementFeed,
	MeasurementOxygen,
	MeasurementFishWeight,
	MeasurementSaturation,
	MeasurementPH,
}

// MeasurementLabel is the message id naming a measurement type.
func MeasurementLabel(t string) string {
	return "Measurement.Types." + t
}

const weightSeparator = ", "

var registry = map[string]*Variant{}
var order []string

func register(v *Variant) {
	registry[v.Key] = v
	order = append(order, v.Key)
}

func Get(key string) (*Variant, error) {
	v, ok := registry[key]
	if !ok {
		return nil, ErrUnknownVariant
	}
	return v, nil
}

// All returns the variants in tab order.
func All() []*Variant {
	out := make([]*Variant, 0, len(order))
	for _, key := range order {
		out = append(out, registry[key])
	}
	return out
}

func Keys() []string {
	return append([]string(nil), order...)
}

func fishTypeField() Field {
	return Field{
		Name:           "type",
		Label:          "Forms.Fields.FishType",
		Kind:           KindFishType,
		Required:       true,
		MissingMessage: MsgFishTypeRequired,
	}
}

func weightField() Field {
	return Field{
		Name:           "kg",
		Label:          "Forms.Fields.TotalWeight",
		Kind:           KindPositive,
		Required:       true,
		MissingMessage: MsgWeightRequired,
		InvalidMessage: MsgWeightInvalid,
	}
}

func quantityField() Field {
	return Field{
		Name:           "quantity",
		Label:          "Forms.Fields.Quantity",
		Kind:           KindPositive,
		Required:       true,
		MissingMessage: MsgQuantityRequired,
		InvalidMessage: MsgQuantityInvalid,
	}
}

func chemistryField(name, label string) Field {
	return Field{Name: name, Label: label, Kind: KindNumber}
}

func isFishWeight(values map[string]string) bool {
	return strings.TrimSpace(values["type"]) == MeasurementFishWeight
}

func init() {
	register(&Variant{
		Key:      KeyMain,
		Title:    "Forms.Tabs.Main",
		Endpoint: backend.EndpointSubmitMainForm,
		Fields: []Field{
			chemistryField("oxygen", "Forms.Fields.Oxygen"),
			chemistryField("temperature", "Forms.Fields.Temperature"),
			chemistryField("saturation", "Forms.Fields.Saturation"),
			chemistryField("pH", "Forms.Fields.PH"),
			chemistryField("feed", "Forms.Fields.Feed"),
		},
		AnyOfMessage:   MsgAnyValue,
		InvalidMessage: MsgNumbersInvalid,
		build: func(p Prepared) backend.Submission {
			return backend.MainFormPayload{
				Date:        p.Date,
				Location:    p.Location,
				Oxygen:      p.Fields.Canonical("oxygen"),
				Temperature: p.Fields.Canonical("temperature"),
				Saturation:  p.Fields.Canonical("saturation"),
				PH:          p.Fields.Canonical("pH"),
				Feed:        p.Fields.Canonical("feed"),
			}
		},
	})

	register(&Variant{
		Key:      KeyControlCatch,
		Title:    "Forms.Tabs.ControlCatch",
		Endpoint: backend.EndpointSubmitControlCatch,
		Rows: &RowSpec{
			Schema:         rowlist.SingleValue(),
			Kinds:          map[string]Kind{rowlist.ValueField: KindPositive},
			Labels:         map[string]string{rowlist.ValueField: "Forms.Fields.FishWeight"},
			MissingMessage: MsgWeightsRequired,
			InvalidMessage: MsgNumbersInvalid,
		},
		build: func(p Prepared) backend.Submission {
			kgs := make([]float64, 0, len(p.Rows))
			for _, row := range p.Rows {
				kgs = append(kgs, row.Number(rowlist.ValueField))
			}
			return backend.ControlCatchPayload{Date: p.Date, Location: p.Location, CatchKGs: kgs}
		},
	})

	register(&Variant{
		Key:      KeySales,
		Title:    "Forms.Tabs.Sales",
		Endpoint: backend.EndpointSubmitSales,
		Fields:   []Field{fishTypeField(), quantityField(), weightField()},
		build: func(p Prepared) backend.Submission {
			return backend.SalesPayload{
				Date:     p.Date,
				Location: p.Location,
				Type:     p.Fields.String("type"),
				Quantity: p.Fields.Number("quantity"),
				KG:       p.Fields.Number("kg"),
			}
		},
	})

	register(&Variant{
		Key:      KeyFishStocking,
		Title:    "Forms.Tabs.FishStocking",
		Endpoint: backend.EndpointSubmitFishStocking,
		Fields:   []Field{fishTypeField(), weightField(), quantityField()},
		build: func(p Prepared) backend.Submission {
			return backend.FishStockingPayload{
				Date:     p.Date,
				Location: p.Location,
				Type:     p.Fields.String("type"),
				KG:       p.Fields.Number("kg"),
				Quantity: p.Fields.Number("quantity"),
			}
		},
	})

	register(&Variant{
		Key:      KeyDeathReport,
		Title:    "Forms.Tabs.DeathReport",
		Endpoint: backend.EndpointSubmitDeathReport,
		Rows: &RowSpec{
			Schema: rowlist.Schema{Fields: []string{"type", "kg"}},
			Kinds:  map[string]Kind{"type": KindFishType, "kg": KindPositive},
			Labels: map[string]string{
				"type": "Forms.Fields.FishType",
				"kg":   "Forms.Fields.Weight",
			},
			MissingMessage: MsgRecordsRequired,
			InvalidMessage: MsgWeightInvalid,
		},
		build: func(p Prepared) backend.Submission {
			data := make([]backend.DeathRecord, 0, len(p.Rows))
			for _, row := range p.Rows {
				data = append(data, backend.DeathRecord{Type: row.String("type"), KG: row.Number("kg")})
			}
			return backend.DeathReportPayload{Date: p.Date, Location: p.Location, Data: data}
		},
	})

	register(&Variant{
		Key:      KeyMeasurement,
		Title:    "Forms.Tabs.Measurement",
		Endpoint: backend.EndpointSubmitMeasurement,
		Fields: []Field{
			{
				Name:           "type",
				Label:          "Forms.Fields.MeasurementType",
				Kind:           KindMeasurementType,
				Options:        MeasurementTypes,
				Required:       true,
				MissingMessage: MsgRequiredFields,
				Clears:         []string{"value"},
				ClearsRows:     true,
			},
			{
				Name:           "value",
				Label:          "Forms.Fields.Value",
				Kind:           KindNumber,
				Required:       true,
				MissingMessage: MsgValueRequired,
				InvalidMessage: MsgValueInvalid,
				When:           func(values map[string]string) bool { return !isFishWeight(values) },
			},
		},
		Rows: &RowSpec{
			Schema:         rowlist.SingleValue(),
			Kinds:          map[string]Kind{rowlist.ValueField: KindPositive},
			Labels:         map[string]string{rowlist.ValueField: "Forms.Fields.FishWeight"},
			MissingMessage: MsgWeightsRequired,
			InvalidMessage: MsgNumbersInvalid,
			When:           isFishWeight,
		},
		build: func(p Prepared) backend.Submission {
			t := p.Fields.String("type")
			value := p.Fields.Canonical("value")
			if t == MeasurementFishWeight {
				weights := make([]string, 0, len(p.Rows))
				for _, row := range p.Rows {
					weights = append(weights, row.Canonical(rowlist.ValueField))
				}
				value = strings.Join(weights, weightSeparator)
			}
			return backend.MeasurementPayload{Date: p.Date, Location: p.Location, Type: t, Value: value}
		},
	})
}
