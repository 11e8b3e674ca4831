package tsdb

import (
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/sensorstream/internal/sensor"
)

// Write queues one JSON reading as a line-protocol point. Numbers and
// booleans become fields, strings become tags, "now" is the timestamp:
//
//	{"sensor":"co2","now":"2026-10-16T09:12:44Z","co2":415.2}
//	sensor,sensor=co2 co2=415.2 1792141964000000000
//
// A write that fills the batch flushes it and returns the flush error.
func (c *Client) Write(payload []byte) error {
	c.mu.RLock()
	measurement, batch, connected := c.cfg.Measurement, c.cfg.BatchSize, c.connected
	c.mu.RUnlock()

	if !connected {
		return ErrNotOpen
	}
	line, err := toLine(measurement, payload)
	if err != nil {
		return err
	}
	if c.addLine(line, batch) {
		return c.Flush()
	}
	return nil
}

func toLine(measurement string, payload []byte) (string, error) {
	d, err := sensor.DecodePayload(payload)
	if err != nil {
		return "", ErrInvalidPayload.With(err)
	}
	if len(d.Fields) == 0 {
		return "", ErrInvalidPayload.Withf("reading has no numeric fields")
	}
	return encodeLine(measurement, d.Tags, d.Fields, d.Time), nil
}

var (
	measurementEscaper = strings.NewReplacer("\n", "", "\r", "", " ", `\ `, ",", `\,`)
	tagEscaper         = strings.NewReplacer("\n", "", "\r", "", " ", `\ `, ",", `\,`, "=", `\=`)
)

// encodeLine renders one point with tags and fields in key order so equal
// readings always produce equal lines.
func encodeLine(measurement string, tags map[string]string, fields map[string]float64, ts time.Time) string {
	var b strings.Builder
	b.WriteString(measurementEscaper.Replace(measurement))

	for _, k := range slices.Sorted(maps.Keys(tags)) {
		b.WriteByte(',')
		b.WriteString(escapeTag(k))
		b.WriteByte('=')
		b.WriteString(escapeTag(tags[k]))
	}

	sep := byte(' ')
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		b.WriteByte(sep)
		sep = ','
		b.WriteString(escapeTag(k))
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(fields[k], 'g', -1, 64))
	}

	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(ts.UnixNano(), 10))
	return b.String()
}

// escapeTag escapes a tag key, tag value or field key. Line breaks are
// dropped so a payload cannot inject extra points.
func escapeTag(s string) string {
	return tagEscaper.Replace(s)
}
