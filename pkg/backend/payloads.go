package backend

// Submission is a record payload bound to its backend endpoint.
type Submission interface {
	Endpoint() string
}

const (
	EndpointSubmitMainForm     = "/miniapp/submitMainForm"
	EndpointSubmitControlCatch = "/miniapp/submitControlCatch"
	EndpointSubmitSales        = "/miniapp/submitSales"
	EndpointSubmitFishStocking = "/miniapp/submitFishStocking"
	EndpointSubmitDeathReport  = "/miniapp/submitDeathReport"
	EndpointSubmitMeasurement  = "/miniapp/submit"
)

// MainFormPayload carries water chemistry and feeding values as normalized
// decimal strings; omitted values are empty.
type MainFormPayload struct {
	Date        string `json:"date"`
	Location    string `json:"location"`
	Oxygen      string `json:"oxygen"`
	Temperature string `json:"temperature"`
	Saturation  string `json:"saturation"`
	PH          string `json:"pH"`
	Feed        string `json:"feed"`
}

func (MainFormPayload) Endpoint() string { return EndpointSubmitMainForm }

type ControlCatchPayload struct {
	Date     string    `json:"date"`
	Location string    `json:"location"`
	CatchKGs []float64 `json:"catchKGs"`
}

func (ControlCatchPayload) Endpoint() string { return EndpointSubmitControlCatch }

type SalesPayload struct {
	Date     string  `json:"date"`
	Location string  `json:"location"`
	Type     string  `json:"type"`
	Quantity float64 `json:"quantity"`
	KG       float64 `json:"kg"`
}

func (SalesPayload) Endpoint() string { return EndpointSubmitSales }

type FishStockingPayload struct {
	Date     string  `json:"date"`
	Location string  `json:"location"`
	Type     string  `json:"type"`
	KG       float64 `json:"kg"`
	Quantity float64 `json:"quantity"`
}

func (FishStockingPayload) Endpoint() string { return EndpointSubmitFishStocking }

type DeathRecord struct {
	Type string  `json:"type"`
	KG   float64 `json:"kg"`
}

type DeathReportPayload struct {
	Date     string        `json:"date"`
	Location string        `json:"location"`
	Data     []DeathRecord `json:"data"`
}

func (DeathReportPayload) Endpoint() string { return EndpointSubmitDeathReport }

// MeasurementPayload is the single-measurement record. For the fish weight
// type the value is a ", " separated list of weights.
type MeasurementPayload struct {
	Date     string `json:"date"`
	Location string `json:"location"`
	Type     string `json:"type"`
	Value    string `json:"value"`
}

func (MeasurementPayload) Endpoint() string { return EndpointSubmitMeasurement }
