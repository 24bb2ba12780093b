package models

import (
	"errors"
	"fmt"
)

// ErrDataIntegrity is returned when a forecast document is missing required fields
// or cannot be interpreted.
var ErrDataIntegrity = errors.New("forecast data integrity")

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%g, %g)", c.Lat, c.Lon)
}

// ForecastPoint is one forecast sample. Temperatures are degrees Celsius.
type ForecastPoint struct {
	Timestamp int64   `json:"dt"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
}

// ForecastDocument is the cached forecast: the provider's records in provider order,
// the coordinates the provider reported for the query, and the raw provider body.
type ForecastDocument struct {
	Records     []ForecastPoint
	Coordinates Coordinates
	Raw         []byte // full provider JSON, persisted as-is
}

// OldestTimestamp returns the timestamp of the first record. Records are in provider
// (chronological) order and are not re-sorted.
func (d ForecastDocument) OldestTimestamp() (int64, error) {
	if len(d.Records) == 0 {
		return 0, fmt.Errorf("%w: document has no records", ErrDataIntegrity)
	}
	return d.Records[0].Timestamp, nil
}
