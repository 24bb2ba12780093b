// Package forecast converts between the forecast provider's JSON body and the typed
// models.ForecastDocument, validating the fields the cache controller depends on.
package forecast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kjstillabower/forecast-cli/internal/models"
)

var validate = newValidator()

// newValidator reports fields by their JSON names so errors read like document paths.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// wireDocument mirrors the subset of the provider schema that must be present.
// Pointers distinguish a missing field from a zero value.
type wireDocument struct {
	List         []wirePoint `json:"list" validate:"required,min=1,dive"`
	City         *wireCity   `json:"city" validate:"required"`
	QueriedCoord *wireCoord  `json:"queried_coord,omitempty"`
}

type wirePoint struct {
	Dt   *int64    `json:"dt" validate:"required"`
	Main *wireMain `json:"main" validate:"required"`
}

type wireMain struct {
	TempMin *float64 `json:"temp_min" validate:"required"`
	TempMax *float64 `json:"temp_max" validate:"required"`
}

type wireCity struct {
	Coord *wireCoord `json:"coord" validate:"required"`
}

type wireCoord struct {
	Lat *float64 `json:"lat" validate:"required"`
	Lon *float64 `json:"lon" validate:"required"`
}

// queriedCoordKey is the top-level field the cache file adds to the provider body to
// record the coordinates that were requested. Provider bodies do not carry it.
const queriedCoordKey = "queried_coord"

// Decode parses and validates a provider body or cache file. Malformed JSON, an empty
// record list or a missing coordinate pair yields an error wrapping models.ErrDataIntegrity.
// Coordinates come from queried_coord when present, otherwise from city.coord.
func Decode(data []byte) (models.ForecastDocument, error) {
	var w wireDocument
	if err := json.Unmarshal(data, &w); err != nil {
		return models.ForecastDocument{}, fmt.Errorf("%w: parse document: %v", models.ErrDataIntegrity, err)
	}
	if err := validate.Struct(w); err != nil {
		return models.ForecastDocument{}, fmt.Errorf("%w: %s", models.ErrDataIntegrity, describe(err))
	}

	coord := w.City.Coord
	if w.QueriedCoord != nil {
		coord = w.QueriedCoord
	}
	doc := models.ForecastDocument{
		Records: make([]models.ForecastPoint, 0, len(w.List)),
		Coordinates: models.Coordinates{
			Lat: *coord.Lat,
			Lon: *coord.Lon,
		},
		Raw: append([]byte(nil), data...),
	}
	for _, p := range w.List {
		doc.Records = append(doc.Records, models.ForecastPoint{
			Timestamp: *p.Dt,
			TempMin:   *p.Main.TempMin,
			TempMax:   *p.Main.TempMax,
		})
	}
	return doc, nil
}

// Encode renders the document for the cache file: the raw provider body with
// queried_coord set to doc.Coordinates, indented with four spaces. Documents built
// without a raw body are rendered from their typed fields in the provider schema.
func Encode(doc models.ForecastDocument) ([]byte, error) {
	var raw []byte
	var err error
	if len(doc.Raw) == 0 {
		raw, err = json.Marshal(toWire(doc))
	} else {
		raw, err = withQueriedCoord(doc.Raw, doc.Coordinates)
	}
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return nil, fmt.Errorf("%w: indent document: %v", models.ErrDataIntegrity, err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// withQueriedCoord sets the queried_coord field on a raw JSON object, leaving all
// other provider fields untouched. Top-level keys come out sorted.
func withQueriedCoord(raw []byte, c models.Coordinates) ([]byte, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: parse document: %v", models.ErrDataIntegrity, err)
	}
	coord, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	obj[queriedCoordKey] = coord
	return json.Marshal(obj)
}

func toWire(doc models.ForecastDocument) wireDocument {
	lat, lon := doc.Coordinates.Lat, doc.Coordinates.Lon
	w := wireDocument{
		List:         make([]wirePoint, 0, len(doc.Records)),
		City:         &wireCity{Coord: &wireCoord{Lat: &lat, Lon: &lon}},
		QueriedCoord: &wireCoord{Lat: &lat, Lon: &lon},
	}
	for _, r := range doc.Records {
		dt, tmin, tmax := r.Timestamp, r.TempMin, r.TempMax
		w.List = append(w.List, wirePoint{
			Dt:   &dt,
			Main: &wireMain{TempMin: &tmin, TempMax: &tmax},
		})
	}
	return w
}

// describe lists the failing fields by JSON path, e.g. `city.coord.lat failed "required"`.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fieldPath(fe.Namespace()), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
