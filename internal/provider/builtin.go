package provider

import (
	"github.com/nerrad567/sensorstream/internal/infrastructure/amqp"
	"github.com/nerrad567/sensorstream/internal/infrastructure/database"
	"github.com/nerrad567/sensorstream/internal/infrastructure/influxdb"
	"github.com/nerrad567/sensorstream/internal/infrastructure/kafka"
	"github.com/nerrad567/sensorstream/internal/infrastructure/mqtt"
	"github.com/nerrad567/sensorstream/internal/infrastructure/nats"
	"github.com/nerrad567/sensorstream/internal/infrastructure/redis"
	"github.com/nerrad567/sensorstream/internal/infrastructure/tsdb"
)

// Built-in provider names.
const (
	MQTT     = "mqtt"
	InfluxDB = "influxdb"
	SQLite   = "sqlite"
	Kafka    = "kafka"
	Redis    = "redis"
	NATS     = "nats"
	RabbitMQ = "rabbitmq"
	Console  = "console"

	VictoriaMetrics = "victoriametrics"
)

// Builtin returns a registry holding every provider shipped with
// sensorstream.
func Builtin() *Registry {
	r := NewRegistry()
	r.Register(MQTT, func(log Logger) (Output, error) { return mqtt.NewPublishClient(log), nil })
	r.Register(InfluxDB, func(log Logger) (Output, error) { return influxdb.New(log), nil })
	r.Register(SQLite, func(log Logger) (Output, error) { return database.NewJournal(log), nil })
	r.Register(Kafka, func(log Logger) (Output, error) { return kafka.New(log), nil })
	r.Register(Redis, func(log Logger) (Output, error) { return redis.New(log), nil })
	r.Register(NATS, func(log Logger) (Output, error) { return nats.New(log), nil })
	r.Register(RabbitMQ, func(log Logger) (Output, error) { return amqp.New(log), nil })
	r.Register(VictoriaMetrics, func(log Logger) (Output, error) { return tsdb.New(log), nil })
	r.Register(Console, func(log Logger) (Output, error) { return NewConsoleOutput(log), nil })
	return r
}
