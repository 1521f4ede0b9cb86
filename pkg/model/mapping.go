// pkg/model/mapping.go
package model

// Field names with meaning beyond the declarative mapping below.
const (
	TimestampField   = "@timestamp"
	FlightDateField  = "FlightDate"
	FlightIDField    = "FlightID"
	OriginField      = "Origin"
	DestField        = "Dest"
	AirlineField     = "Reporting_Airline"
	FlightNumSource  = "Flight_Number_Reporting_Airline"
	CancelCodeField  = "CancellationCode"
	CancelReasonName = "CancellationReason"
	OriginLocation   = "OriginLocation"
	DestLocation     = "DestLocation"
)

// FieldKind selects the coercion applied to a mapped field.
type FieldKind int

const (
	FieldString FieldKind = iota
	FieldInteger
	FieldBoolean
)

// FieldMapping maps one source column to one document field.
type FieldMapping struct {
	Source string
	Target string
	Kind   FieldKind
}

// FlightFields is the full source→target mapping for flight rows. Kept as a
// flat table so the transform stays auditable field by field.
var FlightFields = []FieldMapping{
	{Source: "Reporting_Airline", Target: "Reporting_Airline", Kind: FieldString},
	{Source: "Tail_Number", Target: "Tail_Number", Kind: FieldString},
	{Source: "Flight_Number_Reporting_Airline", Target: "Flight_Number", Kind: FieldString},
	{Source: "Origin", Target: "Origin", Kind: FieldString},
	{Source: "Dest", Target: "Dest", Kind: FieldString},
	{Source: "CancellationCode", Target: "CancellationCode", Kind: FieldString},

	{Source: "CRSDepTime", Target: "CRSDepTimeLocal", Kind: FieldInteger},
	{Source: "DepDelay", Target: "DepDelayMin", Kind: FieldInteger},
	{Source: "TaxiOut", Target: "TaxiOutMin", Kind: FieldInteger},
	{Source: "TaxiIn", Target: "TaxiInMin", Kind: FieldInteger},
	{Source: "CRSArrTime", Target: "CRSArrTimeLocal", Kind: FieldInteger},
	{Source: "ArrDelay", Target: "ArrDelayMin", Kind: FieldInteger},
	{Source: "ActualElapsedTime", Target: "ActualElapsedTimeMin", Kind: FieldInteger},
	{Source: "AirTime", Target: "AirTimeMin", Kind: FieldInteger},
	{Source: "Flights", Target: "Flights", Kind: FieldInteger},
	{Source: "Distance", Target: "DistanceMiles", Kind: FieldInteger},
	{Source: "CarrierDelay", Target: "CarrierDelayMin", Kind: FieldInteger},
	{Source: "WeatherDelay", Target: "WeatherDelayMin", Kind: FieldInteger},
	{Source: "NASDelay", Target: "NASDelayMin", Kind: FieldInteger},
	{Source: "SecurityDelay", Target: "SecurityDelayMin", Kind: FieldInteger},
	{Source: "LateAircraftDelay", Target: "LateAircraftDelayMin", Kind: FieldInteger},

	{Source: "Cancelled", Target: "Cancelled", Kind: FieldBoolean},
	{Source: "Diverted", Target: "Diverted", Kind: FieldBoolean},
}
