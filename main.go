package main

import (
	"encoding/binary"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"framstore/config"
	"framstore/storage"
	"framstore/storage/slot"
)

// RuntimeState is the record the demo persists: the kind of checkpoint a
// device keeps across power cycles.
type RuntimeState struct {
	UptimeSec uint32
	BootCount uint32
	Flags     uint8
}

const runtimeStateSize = 9

func (r *RuntimeState) Size() int { return runtimeStateSize }

func (r *RuntimeState) MarshalRecord(dst []byte) error {
	binary.LittleEndian.PutUint32(dst[0:4], r.UptimeSec)
	binary.LittleEndian.PutUint32(dst[4:8], r.BootCount)
	dst[8] = r.Flags
	return nil
}

func (r *RuntimeState) UnmarshalRecord(src []byte) error {
	r.UptimeSec = binary.LittleEndian.Uint32(src[0:4])
	r.BootCount = binary.LittleEndian.Uint32(src[4:8])
	r.Flags = src[8]
	return nil
}

func main() {
	cfg := config.Default()
	cfg.RegisterFlags(pflag.CommandLine)
	pflag.Parse()

	logger := log.NewLogfmtLogger(os.Stdout)

	if err := cfg.Validate(); err != nil {
		level.Error(logger).Log("msg", "invalid configuration", "err", err)
		os.Exit(1)
	}

	registerer := prometheus.NewRegistry()

	image, err := storage.OpenFileDevice(cfg.ImagePath, cfg.Capacity)
	if err != nil {
		level.Error(logger).Log("msg", "open device image", "err", err)
		os.Exit(1)
	}
	defer image.Close()

	dev := storage.NewInstrumentedDevice(logger, registerer, image)

	store, err := slot.NewStore(dev, cfg.BaseAddr, cfg.Slots, cfg.Version, runtimeStateSize)
	if err != nil {
		level.Error(logger).Log("msg", "create store", "err", err)
		os.Exit(1)
	}

	state := &RuntimeState{}

	switch err := store.Load(state); {
	case err == nil:
		level.Info(logger).Log("msg", "loaded state",
			"uptime_sec", state.UptimeSec, "boot_count", state.BootCount, "flags", state.Flags)
	case errors.Is(err, storage.ErrNotFound):
		if err := faker.FakeData(state); err != nil {
			level.Error(logger).Log("msg", "seed state", "err", err)
			os.Exit(1)
		}
		state.UptimeSec = 0
		state.BootCount = 0
		level.Info(logger).Log("msg", "no stored state, initializing", "flags", state.Flags)

		if err := store.StoreImmediate(state); err != nil {
			level.Error(logger).Log("msg", "initial save failed", "err", err)
			os.Exit(1)
		}
	default:
		level.Error(logger).Log("msg", "load failed", "err", err)
		os.Exit(1)
	}

	state.BootCount++

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.FlushInterval)
	defer ticker.Stop()

	level.Info(logger).Log("msg", "app started...",
		"image", cfg.ImagePath, "slots", cfg.Slots, "flush_interval", cfg.FlushInterval)

	for {
		select {
		case <-ticker.C:
			state.UptimeSec += uint32(cfg.FlushInterval / time.Second)

			if err := store.StoreDeferred(state); err != nil {
				level.Error(logger).Log("msg", "stage state", "err", err)
				continue
			}

			if _, err := store.Flush(); err != nil {
				// Still dirty: the next tick retries the same record.
				level.Warn(logger).Log("msg", "save failed", "err", err)
				continue
			}

			level.Info(logger).Log("msg", "state saved",
				"uptime_sec", state.UptimeSec, "boot_count", state.BootCount)
		case <-sigs:
			if _, err := store.Flush(); err != nil {
				level.Error(logger).Log("msg", "final flush failed", "err", err)
			}
			level.Info(logger).Log("msg", "exiting...")
			return
		}
	}
}
