package tsdb

import (
	"testing"
	"time"
)

func BenchmarkEncodeLine_Simple(b *testing.B) {
	tags := map[string]string{"sensor": "co2"}
	fields := map[string]float64{"co2": 415.2}
	ts := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		encodeLine("sensor", tags, fields, ts)
	}
}

func BenchmarkEncodeLine_BME680(b *testing.B) {
	tags := map[string]string{"sensor": "bme680", "site": "lab-2"}
	fields := map[string]float64{
		"temperature": 21.5,
		"humidity":    45.0,
		"pressure":    1013.2,
		"gas":         48211.0,
	}
	ts := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		encodeLine("air", tags, fields, ts)
	}
}

func BenchmarkToLine(b *testing.B) {
	payload := []byte(`{"sensor":"co2","now":"2026-10-16T09:12:44Z","co2":415.2,"tvoc":12}`)
	for i := 0; i < b.N; i++ {
		_, _ = toLine("sensor", payload)
	}
}

func BenchmarkEscapeTag(b *testing.B) {
	for i := 0; i < b.N; i++ {
		escapeTag("sensor=co2,room 01")
	}
}
