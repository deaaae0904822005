package app

import (
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/stecc88/roommatch/internal/cache"
	"github.com/stecc88/roommatch/internal/config"
	"github.com/stecc88/roommatch/internal/notify"
)

// AppContext holds shared dependencies (DB, Redis, Notifier, Logger, etc.)
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Notifier   *notify.RedisNotifier
	Logger     *slog.Logger
	Validator  *validator.Validate
}

// New creates a new AppContext. The notifier shares the Redis connection.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Notifier:   notify.NewRedisNotifier(rdb),
		Logger:     logger,
		Validator:  NewValidator(),
	}
}

// NewValidator reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
