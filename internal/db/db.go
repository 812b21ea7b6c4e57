package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options controls how the database connection is opened.
// URL 非空时连接托管的 PostgreSQL，否则回退到本地 SQLite 文件。
type Options struct {
	URL    string
	Path   string
	Logger logger.Interface
}

// Open establishes the gorm connection for the configured backend.
func Open(opts Options) (*gorm.DB, error) {
	gormLogger := opts.Logger
	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}
	config := &gorm.Config{Logger: gormLogger}

	if url := strings.TrimSpace(opts.URL); url != "" {
		gdb, err := gorm.Open(postgres.Open(url), config)
		if err != nil {
			return nil, eris.Wrap(err, "opening postgres database")
		}
		return gdb, nil
	}

	path := strings.TrimSpace(opts.Path)
	if path == "" {
		path = "devmarkblog.db"
	}

	if err := ensureParentDir(path); err != nil {
		return nil, eris.Wrap(err, "preparing sqlite directory")
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=1&_busy_timeout=5000", path)
	gdb, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return nil, eris.Wrap(err, "opening sqlite database")
	}

	return gdb, nil
}

// EnsureSchema 创建或补齐博客所需的表结构。
// AutoMigrate 对已存在的表只做增量变更，可在每次启动时安全调用。
func EnsureSchema(ctx context.Context, gdb *gorm.DB) error {
	if gdb == nil {
		return eris.New("gorm DB is required")
	}

	if err := gdb.WithContext(ctx).AutoMigrate(
		&User{},
		&Category{},
		&Post{},
	); err != nil {
		return eris.Wrap(err, "auto migrating blog schema")
	}

	return nil
}

// Close releases the underlying database resources.
func Close(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return eris.Wrap(err, "retrieving sql.DB for close")
	}

	if err := sqlDB.Close(); err != nil {
		return eris.Wrap(err, "closing database connection")
	}

	return nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
