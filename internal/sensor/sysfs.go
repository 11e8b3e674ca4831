package sensor

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/sensorstream/internal/infrastructure/config"
)

var (
	keyPath  = []string{"path"}
	keyField = []string{"field"}
	keyScale = []string{"scale"}
)

// sysfsReader reads a single numeric value from a file, typically an IIO or
// hwmon attribute under /sys. The raw value is multiplied by scale.
type sysfsReader struct {
	name  string
	path  string
	field string
	scale float64
}

func newSysfs(name string, conn config.ConnString) (Reader, error) {
	path := conn.String(keyPath, "")
	if path == "" {
		return nil, ErrDriverConfig.Withf("sysfs: path is required")
	}
	scale, err := conn.Float(keyScale, 1)
	if err != nil {
		return nil, ErrDriverConfig.With(err)
	}

	return &sysfsReader{
		name:  name,
		path:  path,
		field: conn.String(keyField, "value"),
		scale: scale,
	}, nil
}

// Sample reads and parses the attribute file.
func (r *sysfsReader) Sample(ctx context.Context) (Reading, error) {
	if err := ctx.Err(); err != nil {
		return Reading{}, ErrSampleFailed.With(err)
	}

	raw, err := os.ReadFile(r.path)
	if err != nil {
		return Reading{}, ErrSampleFailed.With(err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		return Reading{}, ErrSampleFailed.With(err)
	}

	return Reading{
		Sensor: r.name,
		Time:   time.Now(),
		Values: map[string]float64{r.field: v * r.scale},
	}, nil
}
