package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const maxPageSizeLimit = 250

// PagingConfig controls list endpoint defaults.
type PagingConfig struct {
	DefaultSize int    `mapstructure:"defaultSize"`
	MaxSize     int    `mapstructure:"maxSize"`
	DefaultSort string `mapstructure:"defaultSort"`
}

func DefaultPagingConfig() PagingConfig {
	return PagingConfig{
		DefaultSize: 10,
		MaxSize:     100,
		DefaultSort: "id,asc",
	}
}

type PagingConfigHolder struct {
	current atomic.Value // holds PagingConfig
}

func NewPagingConfigHolder(log *zap.Logger) (*PagingConfigHolder, error) {
	return newPagingConfigHolder(log, "/etc/parkingcontrol", ".")
}

func newPagingConfigHolder(log *zap.Logger, paths ...string) (*PagingConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}

	v := viper.New()
	v.SetConfigName("paging")
	v.SetConfigType("yml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix("PARKINGCONTROL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPagingConfig()
	v.SetDefault("paging.defaultSize", defaults.DefaultSize)
	v.SetDefault("paging.maxSize", defaults.MaxSize)
	v.SetDefault("paging.defaultSort", defaults.DefaultSort)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	var cfg PagingConfig
	if err := v.UnmarshalKey("paging", &cfg); err != nil {
		return nil, err
	}
	if err := validatePagingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PagingConfigHolder{}
	holder.current.Store(cfg)

	if fileFound {
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated PagingConfig
			if err := v.UnmarshalKey("paging", &updated); err != nil {
				log.Warn("paging config reload failed", zap.Error(err))
				return
			}
			if err := validatePagingConfig(updated); err != nil {
				log.Warn("invalid paging config ignored", zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("paging config reloaded", zap.String("file", e.Name))
		})
		v.WatchConfig()
	}

	return holder, nil
}

// NewStaticPagingConfigHolder returns a holder that never reloads.
func NewStaticPagingConfigHolder(cfg PagingConfig) *PagingConfigHolder {
	holder := &PagingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *PagingConfigHolder) Get() PagingConfig {
	return h.current.Load().(PagingConfig)
}

func validatePagingConfig(cfg PagingConfig) error {
	if cfg.MaxSize <= 0 || cfg.MaxSize > maxPageSizeLimit {
		return errors.New("paging.maxSize must be between 1 and 250")
	}
	if cfg.DefaultSize <= 0 || cfg.DefaultSize > cfg.MaxSize {
		return errors.New("paging.defaultSize must be between 1 and paging.maxSize")
	}
	return nil
}
