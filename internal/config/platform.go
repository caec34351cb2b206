package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PlatformConfig carries operator-tunable platform defaults. It is loaded
// from koomy.yml when present and hot-reloaded on change.
type PlatformConfig struct {
	DefaultPlanCode   string  `mapstructure:"defaultPlanCode"`
	QuotaWarningRatio float64 `mapstructure:"quotaWarningRatio"`
}

func DefaultPlatformConfig() PlatformConfig {
	return PlatformConfig{
		DefaultPlanCode:   "STARTER_FREE",
		QuotaWarningRatio: 0.8,
	}
}

type PlatformConfigHolder struct {
	current atomic.Value // holds PlatformConfig
}

func NewPlatformConfigHolder() (*PlatformConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("koomy")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/koomy/config")
	v.AddConfigPath("/etc/koomy")
	v.AddConfigPath(".")

	v.SetEnvPrefix("KOOMY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPlatformConfig()
	v.SetDefault("platform.defaultPlanCode", defaults.DefaultPlanCode)
	v.SetDefault("platform.quotaWarningRatio", defaults.QuotaWarningRatio)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg PlatformConfig
	if err := v.UnmarshalKey("platform", &cfg); err != nil {
		return nil, err
	}
	if err := validatePlatformConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PlatformConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PlatformConfig
		if err := v.UnmarshalKey("platform", &updated); err != nil {
			log.Printf("[platform-config] reload failed: %v", err)
			return
		}
		if err := validatePlatformConfig(updated); err != nil {
			log.Printf("[platform-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[platform-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPlatformConfigHolder wraps a fixed config with no file watching.
func NewStaticPlatformConfigHolder(cfg PlatformConfig) *PlatformConfigHolder {
	holder := &PlatformConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *PlatformConfigHolder) Get() PlatformConfig {
	return h.current.Load().(PlatformConfig)
}

func validatePlatformConfig(cfg PlatformConfig) error {
	if strings.TrimSpace(cfg.DefaultPlanCode) == "" {
		return errors.New("platform.defaultPlanCode cannot be empty")
	}
	if cfg.QuotaWarningRatio <= 0 || cfg.QuotaWarningRatio > 1 {
		return errors.New("platform.quotaWarningRatio must be in (0, 1]")
	}
	return nil
}
