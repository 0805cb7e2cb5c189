package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ngocminh/spam-sentinel/internal/config"
	"github.com/ngocminh/spam-sentinel/internal/ports"
	"github.com/ngocminh/spam-sentinel/internal/seenstore"
)

// SeenStoreFactory creates seen stores based on configuration
type SeenStoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSeenStoreFactory creates a new seen store factory
func NewSeenStoreFactory(cfg *config.Config, logger *zap.Logger) *SeenStoreFactory {
	return &SeenStoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSeenStore creates a seen store based on the configuration
func (f *SeenStoreFactory) CreateSeenStore() (ports.SeenStore, error) {
	storeType := f.cfg.GetString("seen.type")
	retention, err := f.cfg.GetDuration("seen.retention")
	if err != nil {
		return nil, fmt.Errorf("invalid seen retention: %w", err)
	}
	cleanupFreq, err := f.cfg.GetDuration("seen.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid seen cleanup frequency: %w", err)
	}

	switch storeType {
	case "memory":
		return seenstore.NewMemoryStore(f.logger, retention, cleanupFreq), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("seen.sqlite_path")
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return seenstore.NewSQLiteStore(sqlitePath, f.logger, retention, cleanupFreq)
	case "mysql":
		mysqlDSN := f.cfg.GetString("seen.mysql_dsn")
		return seenstore.NewMySQLStore(mysqlDSN, f.logger, retention, cleanupFreq)
	default:
		return nil, fmt.Errorf("unsupported seen store type: %s", storeType)
	}
}
