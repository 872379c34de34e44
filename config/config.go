package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"framstore/storage"
)

// Config carries the demo binary's settings: where the device image lives,
// the slot-ring geometry, and how often state is persisted.
type Config struct {
	ImagePath     string
	Capacity      int
	BaseAddr      uint16
	Slots         int
	Version       uint16
	FlushInterval time.Duration
}

// Default mirrors the reference hardware setup: an 8 KiB part with a
// four-slot ring at 0x0200.
func Default() *Config {
	return &Config{
		ImagePath:     "framstore.img",
		Capacity:      8 * 1024,
		BaseAddr:      0x0200,
		Slots:         4,
		Version:       1,
		FlushInterval: time.Minute,
	}
}

func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ImagePath, "image", c.ImagePath, "path of the device image file")
	fs.IntVar(&c.Capacity, "capacity", c.Capacity, "device capacity in bytes")
	fs.Uint16Var(&c.BaseAddr, "base", c.BaseAddr, "base address of the slot ring")
	fs.IntVar(&c.Slots, "slots", c.Slots, "number of rotation slots")
	fs.Uint16Var(&c.Version, "version", c.Version, "record schema version")
	fs.DurationVar(&c.FlushInterval, "flush-interval", c.FlushInterval, "interval between persisted state updates")
}

func (c *Config) Validate() error {
	if c.ImagePath == "" {
		return errors.New("image path is required")
	}
	if c.Capacity < 1 || c.Capacity > storage.MaxCapacity {
		return errors.Errorf("capacity %d outside [1, %d]", c.Capacity, storage.MaxCapacity)
	}
	if c.Slots < 1 {
		return errors.Errorf("slot count %d, need at least 1", c.Slots)
	}
	if c.FlushInterval < time.Second {
		return errors.Errorf("flush interval %s, need at least 1s", c.FlushInterval)
	}
	return nil
}
