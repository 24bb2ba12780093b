// Package report turns a forecast document into the min/max temperature summary
// printed on standard output.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/kjstillabower/forecast-cli/internal/models"
)

// TimestampLayout formats record timestamps (UTC) as summary keys.
const TimestampLayout = "2006-01-02 15:04:05"

// Entry is one timestamp/temperature pair.
type Entry struct {
	Timestamp   string
	Temperature float64
}

// OrderedTemperatures maps timestamp text to a temperature, keeping insertion order.
type OrderedTemperatures struct {
	entries []Entry
	index   map[string]int
}

// Set adds or updates a key. An existing key keeps its position.
func (o *OrderedTemperatures) Set(ts string, temp float64) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[ts]; ok {
		o.entries[i].Temperature = temp
		return
	}
	o.index[ts] = len(o.entries)
	o.entries = append(o.entries, Entry{Timestamp: ts, Temperature: temp})
}

// Get returns the temperature for ts.
func (o *OrderedTemperatures) Get(ts string) (float64, bool) {
	i, ok := o.index[ts]
	if !ok {
		return 0, false
	}
	return o.entries[i].Temperature, true
}

// Entries returns the pairs in insertion order.
func (o *OrderedTemperatures) Entries() []Entry {
	return append([]Entry(nil), o.entries...)
}

// Len returns the number of distinct timestamps.
func (o *OrderedTemperatures) Len() int {
	return len(o.entries)
}

// MarshalJSON emits a JSON object whose keys follow insertion order.
func (o *OrderedTemperatures) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range o.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Timestamp)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Temperature)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Summary is the printed view of a forecast.
type Summary struct {
	MaxTemperatures *OrderedTemperatures `json:"max_temperatures"`
	MinTemperatures *OrderedTemperatures `json:"min_temperatures"`
}

// Summarize builds the max and min mappings in record order. A timestamp that occurs
// twice keeps its first position and takes the later record's values.
func Summarize(doc models.ForecastDocument) Summary {
	s := Summary{
		MaxTemperatures: &OrderedTemperatures{},
		MinTemperatures: &OrderedTemperatures{},
	}
	for _, r := range doc.Records {
		ts := FormatTimestamp(r.Timestamp)
		s.MaxTemperatures.Set(ts, r.TempMax)
		s.MinTemperatures.Set(ts, r.TempMin)
	}
	return s
}

// FormatTimestamp renders epoch seconds in UTC using TimestampLayout.
func FormatTimestamp(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(TimestampLayout)
}

// Print writes the summary as indented JSON followed by a newline.
func Print(w io.Writer, s Summary) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return fmt.Errorf("indent summary: %w", err)
	}
	buf.WriteByte('\n')
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
