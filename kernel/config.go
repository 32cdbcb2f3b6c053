package kernel

import (
	"fmt"

	"github.com/spf13/viper"

	"grasskernel/earth"
)

// PlatformName selects the HAL's quantum length (spec.md §6).
type PlatformName string

const (
	PlatformEmulator PlatformName = "emulator"
	PlatformHardware PlatformName = "hardware"
)

// TranslationName selects the privilege-transition mode init performs
// (spec.md §4.7).
type TranslationName string

const (
	TranslationSoftTLB         TranslationName = "soft-tlb"
	TranslationHardwarePaging  TranslationName = "hardware-paging"
)

// Config is the kernel's boot-time configuration, loaded from a
// boot.yaml via spf13/viper. No flags are bound into viper; the boot
// command's --monitor-addr flag overrides MonitorBindAddr after loading.
type Config struct {
	HeapWindowBytes int             `mapstructure:"heap_window_bytes"`
	Platform        PlatformName    `mapstructure:"platform"`
	Translation     TranslationName `mapstructure:"translation"`
	DiskImagePath   string          `mapstructure:"disk_image_path"`
	MonitorBindAddr string          `mapstructure:"monitor_bind_addr"`
}

// DefaultConfig returns the configuration used when no boot.yaml is
// present: a 1 MiB heap window, the emulator platform, soft-TLB
// translation, no disk image, and the monitor bound to localhost.
func DefaultConfig() Config {
	return Config{
		HeapWindowBytes: 1 << 20,
		Platform:        PlatformEmulator,
		Translation:     TranslationSoftTLB,
		DiskImagePath:   "",
		MonitorBindAddr: "127.0.0.1:7070",
	}
}

// LoadConfig reads path (a boot.yaml) via viper, falling back to
// DefaultConfig's values for anything the file omits. An empty path
// returns DefaultConfig unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("heap_window_bytes", cfg.HeapWindowBytes)
	v.SetDefault("platform", string(cfg.Platform))
	v.SetDefault("translation", string(cfg.Translation))
	v.SetDefault("disk_image_path", cfg.DiskImagePath)
	v.SetDefault("monitor_bind_addr", cfg.MonitorBindAddr)

	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("load boot config %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse boot config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) earthPlatform() earth.Platform {
	if c.Platform == PlatformHardware {
		return earth.PlatformHardware
	}
	return earth.PlatformEmulator
}

func (c Config) earthTranslation() earth.Translation {
	if c.Translation == TranslationHardwarePaging {
		return earth.HardwarePaging
	}
	return earth.SoftTLB
}
