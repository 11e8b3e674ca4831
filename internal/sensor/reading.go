package sensor

import (
	"encoding/json"
	"time"
)

// Reserved payload keys.
const (
	KeySensor = "sensor"
	KeyNow    = "now"
)

// Reading is one sample from a sensor.
type Reading struct {
	// Sensor is the configured sensor name.
	Sensor string

	// Time is when the sample was taken.
	Time time.Time

	// Values maps field names (co2, temp, hum, ...) to measurements.
	Values map[string]float64
}

// Payload serialises the reading as a flat JSON object:
//
//	{"co2":415.2,"now":"2026-10-16T09:12:44.123Z","sensor":"co2","temperature":21.4}
//
// Value keys colliding with "sensor" or "now" are dropped.
func (r Reading) Payload() ([]byte, error) {
	doc := make(map[string]any, len(r.Values)+2)
	for k, v := range r.Values {
		if k == KeySensor || k == KeyNow {
			continue
		}
		doc[k] = v
	}
	doc[KeySensor] = r.Sensor
	doc[KeyNow] = r.Time.UTC().Format(time.RFC3339Nano)

	return json.Marshal(doc)
}

// Decoded is a payload split into the parts time-series sinks need.
type Decoded struct {
	Time time.Time

	// Fields holds numeric values; Tags holds string values, including sensor.
	Fields map[string]float64
	Tags   map[string]string
}

// DecodePayload parses a JSON object payload. Numbers become fields, strings
// become tags, booleans become 0/1 fields, and "now" becomes the timestamp
// (time.Now when absent or unparseable). Nested values are ignored.
func DecodePayload(b []byte) (Decoded, error) {
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return Decoded{}, ErrInvalidPayload.With(err)
	}

	d := Decoded{
		Time:   time.Now(),
		Fields: make(map[string]float64),
		Tags:   make(map[string]string),
	}

	for k, v := range doc {
		switch val := v.(type) {
		case float64:
			d.Fields[k] = val
		case bool:
			if val {
				d.Fields[k] = 1
			} else {
				d.Fields[k] = 0
			}
		case string:
			if k == KeyNow {
				if ts, err := time.Parse(time.RFC3339Nano, val); err == nil {
					d.Time = ts
				}
				continue
			}
			d.Tags[k] = val
		}
	}

	if len(d.Fields) == 0 {
		return Decoded{}, ErrInvalidPayload.Withf("no numeric fields")
	}
	return d, nil
}
