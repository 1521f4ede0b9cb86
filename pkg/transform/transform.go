// pkg/transform/transform.go
package transform

import (
	"strings"

	"go.uber.org/zap"

	"github.com/skylens/flight-ingress/pkg/lookup"
	"github.com/skylens/flight-ingress/pkg/model"
)

// compositeKeySep joins the five composite-key fields into a FlightID.
const compositeKeySep = "_"

// Transformer maps one raw flight row to a normalized document, consulting
// the enrichment lookup tables built at loader construction.
type Transformer struct {
	airports      *lookup.AirportLookup
	cancellations *lookup.CancellationLookup
	logger        *zap.Logger
}

// NewTransformer creates a transformer over the given lookup tables.
func NewTransformer(airports *lookup.AirportLookup, cancellations *lookup.CancellationLookup, logger *zap.Logger) *Transformer {
	return &Transformer{
		airports:      airports,
		cancellations: cancellations,
		logger:        logger,
	}
}

// Transform converts a raw row into a document. Absent source values become
// the nil sentinel so pruning stays uniform; the timestamp field is always
// set (possibly nil) because the partition router needs to observe it before
// the document is compacted.
func (t *Transformer) Transform(row model.RawRow) model.Document {
	doc := make(model.Document, len(model.FlightFields)+6)

	// Prefer the timestamp-formatted column, fall back to the date column.
	timestamp := Present(row[model.TimestampField])
	if timestamp == "" {
		timestamp = Present(row[model.FlightDateField])
	}
	if timestamp != "" {
		doc[model.TimestampField] = timestamp
	} else {
		doc[model.TimestampField] = nil
	}

	for _, fm := range model.FlightFields {
		switch fm.Kind {
		case model.FieldString:
			if value := Present(row[fm.Source]); value != "" {
				doc[fm.Target] = value
			} else {
				doc[fm.Target] = nil
			}
		case model.FieldInteger:
			doc[fm.Target] = ToInteger(row[fm.Source])
		case model.FieldBoolean:
			doc[fm.Target] = ToBoolean(row[fm.Source])
		}
	}

	t.synthesizeFlightID(doc, timestamp)
	t.enrich(doc)

	return doc
}

// synthesizeFlightID builds the stable per-record identifier when all five
// parts are present; otherwise the field is omitted, never present-but-wrong.
func (t *Transformer) synthesizeFlightID(doc model.Document, timestamp string) {
	carrier, _ := doc[model.AirlineField].(string)
	flightNum, _ := doc["Flight_Number"].(string)
	origin, _ := doc[model.OriginField].(string)
	dest, _ := doc[model.DestField].(string)

	if timestamp == "" || carrier == "" || flightNum == "" || origin == "" || dest == "" {
		return
	}

	doc[model.FlightIDField] = strings.Join(
		[]string{timestamp, carrier, flightNum, origin, dest},
		compositeKeySep,
	)
}

// enrich injects lookup-derived fields, only when a value is found.
func (t *Transformer) enrich(doc model.Document) {
	if code, _ := doc[model.CancelCodeField].(string); code != "" {
		if reason := t.cancellations.Reason(code); reason != "" {
			doc[model.CancelReasonName] = reason
		}
	}

	if origin, _ := doc[model.OriginField].(string); origin != "" {
		if loc := t.airports.Coordinates(origin); loc != "" {
			doc[model.OriginLocation] = loc
		}
	}

	if dest, _ := doc[model.DestField].(string); dest != "" {
		if loc := t.airports.Coordinates(dest); loc != "" {
			doc[model.DestLocation] = loc
		}
	}
}
