package storage

import (
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
)

// DeviceMetrics counts traffic at the transport boundary. The record store
// itself stays silent; everything observable happens here.
type DeviceMetrics struct {
	reads         prometheus.Counter
	writes        prometheus.Counter
	readFailures  prometheus.Counter
	writeFailures prometheus.Counter
	bytesRead     prometheus.Counter
	bytesWritten  prometheus.Counter
}

func NewDeviceMetrics(registerer prometheus.Registerer) *DeviceMetrics {
	m := &DeviceMetrics{}

	m.reads = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reads_total",
		Help: "Total number of device reads.",
	})

	m.writes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "writes_total",
		Help: "Total number of device writes.",
	})

	m.readFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "read_failures_total",
		Help: "Total number of device reads that failed.",
	})

	m.writeFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "write_failures_total",
		Help: "Total number of device writes that failed.",
	})

	m.bytesRead = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "read_bytes_total",
		Help: "Total bytes read from the device.",
	})

	m.bytesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "written_bytes_total",
		Help: "Total bytes written to the device.",
	})

	registerer.MustRegister(m.reads, m.writes, m.readFailures, m.writeFailures,
		m.bytesRead, m.bytesWritten)

	return m
}

// InstrumentedDevice decorates a Device with prometheus counters and error
// logging. It adds no behavior: every call is passed through unchanged.
type InstrumentedDevice struct {
	dev     Device
	logger  log.Logger
	metrics *DeviceMetrics
}

func NewInstrumentedDevice(logger log.Logger, registerer prometheus.Registerer, dev Device) *InstrumentedDevice {
	return &InstrumentedDevice{
		dev:     dev,
		logger:  logger,
		metrics: NewDeviceMetrics(prometheus.WrapRegistererWithPrefix("framstore_device_", registerer)),
	}
}

func (d *InstrumentedDevice) Size() int {
	return d.dev.Size()
}

func (d *InstrumentedDevice) ReadAt(addr uint16, buf []byte) error {
	d.metrics.reads.Inc()

	if err := d.dev.ReadAt(addr, buf); err != nil {
		d.metrics.readFailures.Inc()
		level.Error(d.logger).Log("msg", "device read failed", "addr", hexAddr(addr), "len", len(buf), "err", err)
		return err
	}

	d.metrics.bytesRead.Add(float64(len(buf)))
	return nil
}

func (d *InstrumentedDevice) WriteAt(addr uint16, data []byte) error {
	d.metrics.writes.Inc()

	if err := d.dev.WriteAt(addr, data); err != nil {
		d.metrics.writeFailures.Inc()
		level.Error(d.logger).Log("msg", "device write failed", "addr", hexAddr(addr), "len", len(data), "err", err)
		return err
	}

	d.metrics.bytesWritten.Add(float64(len(data)))
	return nil
}

func hexAddr(addr uint16) string {
	return fmt.Sprintf("%#04x", addr)
}
