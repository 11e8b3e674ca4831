package influxdb

import (
	"context"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/sensorstream/internal/sensor"
)

// Write converts a JSON reading into a point and writes it.
//
// Numeric and boolean values become fields, string values become tags
// (including "sensor"), and "now" is the point timestamp:
//
//	{"sensor":"co2","now":"2026-10-16T09:12:44Z","co2":415.2}
//	=> sensor,sensor=co2 co2=415.2 <now in ns>
func (p *Provider) Write(payload []byte) error {
	p.mu.RLock()
	writeAPI := p.writeAPI
	cfg := p.cfg
	p.mu.RUnlock()

	if writeAPI == nil {
		return ErrNotOpen
	}

	point, err := toPoint(cfg.Measurement, payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := writeAPI.WritePoint(ctx, point); err != nil {
		return ErrWriteFailed.With(err)
	}
	return nil
}

// toPoint builds an InfluxDB point from a JSON reading payload.
func toPoint(measurement string, payload []byte) (*write.Point, error) {
	d, err := sensor.DecodePayload(payload)
	if err != nil {
		return nil, ErrInvalidPayload.With(err)
	}

	fields := make(map[string]interface{}, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = v
	}

	return write.NewPoint(measurement, d.Tags, fields, d.Time), nil
}
