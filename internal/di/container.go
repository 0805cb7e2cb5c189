package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/ngocminh/spam-sentinel/internal/config"
	"github.com/ngocminh/spam-sentinel/internal/engine"
	"github.com/ngocminh/spam-sentinel/internal/factory"
	"github.com/ngocminh/spam-sentinel/internal/features"
	"github.com/ngocminh/spam-sentinel/internal/logging"
	"github.com/ngocminh/spam-sentinel/internal/mailsource"
	"github.com/ngocminh/spam-sentinel/internal/monitor"
	"github.com/ngocminh/spam-sentinel/internal/notify"
	"github.com/ngocminh/spam-sentinel/internal/ports"
	"github.com/ngocminh/spam-sentinel/internal/registry"
	"github.com/ngocminh/spam-sentinel/internal/textnorm"
	"github.com/ngocminh/spam-sentinel/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register the classification pipeline
	if err := container.Provide(textnorm.NewNormalizer); err != nil {
		return nil, err
	}
	if err := container.Provide(features.NewExtractor); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*registry.Registry, error) {
		return registry.New(cfg.GetString("models.dir"), logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(engine.New); err != nil {
		return nil, err
	}
	if err := container.Provide(func(e *engine.Engine) ports.MessageClassifier {
		return e
	}); err != nil {
		return nil, err
	}

	// Register mail source
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) ports.MailSource {
		return mailsource.NewIMAPSource(cfg.GetIMAP().Server, logger)
	}); err != nil {
		return nil, err
	}

	// Register notification sink
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) ports.NotificationSink {
		notification := cfg.GetNotification()
		return notify.NewTelegramSink(notification.TelegramToken, notification.TelegramChatID, logger)
	}); err != nil {
		return nil, err
	}

	// Register seen store
	if err := container.Provide(factory.NewSeenStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.SeenStoreFactory) (ports.SeenStore, error) {
		return f.CreateSeenStore()
	}); err != nil {
		return nil, err
	}

	// Register whitelist checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *whitelist.Checker {
		return whitelist.NewChecker(cfg.GetStringSlice("spam.whitelisted_domains"), logger)
	}); err != nil {
		return nil, err
	}

	// Register monitor loop
	if err := container.Provide(func(
		cfg *config.Config,
		source ports.MailSource,
		classifier ports.MessageClassifier,
		sink ports.NotificationSink,
		seen ports.SeenStore,
		wl *whitelist.Checker,
		logger *zap.Logger,
	) *monitor.Loop {
		imapCfg := cfg.GetIMAP()
		monitorCfg := cfg.GetMonitor()
		notification := cfg.GetNotification()
		opts := monitor.Options{
			Email:         imapCfg.Email,
			Password:      imapCfg.Password,
			Model:         monitorCfg.Model,
			CheckInterval: monitorCfg.CheckInterval,
			InitialLoad:   monitorCfg.InitialLoad,
			PollLimit:     monitorCfg.PollLimit,
			LookbackDays:  imapCfg.LookbackDays,
			NotifyOnSpam:  notification.NotifyOnSpam,
			NotifyOnHam:   notification.NotifyOnHam,
			AutoLabel:     monitorCfg.AutoLabel,
		}
		return monitor.New(source, classifier, sink, seen, wl, opts, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
