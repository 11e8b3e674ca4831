// Package influxdb provides the "influxdb" output provider.
//
// It wraps the official influxdb-client-go v2 library and writes each sensor
// reading as one point through the blocking write API.
//
// # Usage
//
//	p := influxdb.New(log)
//	err := p.Init("url=http://localhost:8086;token=dev-token;org=nen;bucket=sensors")
//	p.AttachStopSignal(stop)
//	err = p.Open()
//	defer p.Close()
//
//	err = p.Write([]byte(`{"sensor":"co2","now":"2026-10-16T09:12:44Z","co2":415.2}`))
//
// # Error Handling
//
// Errors are fault.Error values: 100 open failed, 102 mandatory option
// missing, 103 payload not a JSON reading, 105 not opened, 106 write failed.
package influxdb
