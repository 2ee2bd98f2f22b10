package config

import (
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ChangeHandler is called with the re-read configuration after the file changes.
type ChangeHandler func(cfg *Config)

// Watch reloads the config file on change and passes the result to handler.
// It is a no-op when the file was not found by Load. A file that no longer
// parses is logged and ignored, leaving the previous configuration in effect.
func (l *Loader) Watch(logger *zap.Logger, handler ChangeHandler) {
	if !l.fileLoaded || handler == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	l.v.OnConfigChange(func(ev fsnotify.Event) {
		if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.decode()
		if err != nil {
			logger.Warn("Config reload failed", zap.String("file", ev.Name), zap.Error(err))
			return
		}
		logger.Info("Configuration reloaded",
			zap.String("file", ev.Name),
			zap.String("op", ev.Op.String()),
			zap.Int("display_max_items", cfg.Display.MaxItems))
		handler(cfg)
	})
	l.v.WatchConfig()
}
