// Package tsdb provides the "victoriametrics" output provider.
//
// It writes sensor readings to VictoriaMetrics using InfluxDB line protocol
// over HTTP, using only net/http.
//
// # Usage
//
//	c := tsdb.New(log)
//	if err := c.Init("url=http://127.0.0.1:8428;m=air;bs=50;fi=2"); err != nil {
//	    return err
//	}
//	c.AttachStopSignal(stop)
//	if err := c.Open(); err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	err := c.Write([]byte(`{"sensor":"co2","co2":415}`))
//
// # Batching
//
// Lines are buffered up to batchsize and flushed in a single POST to /write.
// The default batch size of 1 makes every Write a blocking request, so a
// failed write reaches the caller's publish policy. Larger batches are also
// flushed every flushinterval seconds; those failures are logged.
package tsdb
