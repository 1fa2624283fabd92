package app

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/phenrril/bikeconfig/internal/adapters/cache"
	"github.com/phenrril/bikeconfig/internal/adapters/export"
	"github.com/phenrril/bikeconfig/internal/adapters/httpserver"
	"github.com/phenrril/bikeconfig/internal/adapters/repo/memory"
	"github.com/phenrril/bikeconfig/internal/adapters/repo/postgres"
	"github.com/phenrril/bikeconfig/internal/config"
	"github.com/phenrril/bikeconfig/internal/domain"
	"github.com/phenrril/bikeconfig/internal/usecase"
)

type App struct {
	// DB is nil when running on the memory store.
	DB            *gorm.DB
	Config        config.Config
	Configuration *usecase.ConfigurationUC
	Catalog       *usecase.CatalogUC
	Rules         *usecase.RuleUC
	Orders        *usecase.OrderUC
}

func NewApp(cfg config.Config, db *gorm.DB) (*App, error) {
	var (
		products  domain.ProductRepo
		rules     domain.RuleRepo
		orders    domain.OrderRepo
		customers domain.CustomerRepo
		source    domain.SnapshotSource
	)
	if cfg.Store == config.StoreMemory {
		store := memory.NewStore()
		products, rules, source = store, store, store
		orders, customers = store.Orders(), store.Customers()
		db = nil
	} else {
		products = postgres.NewProductRepo(db)
		rules = postgres.NewRuleRepo(db)
		orders = postgres.NewOrderRepo(db)
		customers = postgres.NewCustomerRepo(db)
		source = postgres.NewSnapshotRepo(db)
	}

	var invalidator domain.SnapshotInvalidator
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisCache(cfg.RedisAddr, "configurator")
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := cache.Ping(ctx, rc); err != nil {
			zlog.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis not reachable, snapshots will be read from the store until it is")
		}
		cancel()
		sc := cache.NewSnapshotCache(rc, source, cfg.SnapshotTTL, zlog.Logger.With().Str("component", "snapshot_cache").Logger())
		source, invalidator = sc, sc
	}

	a := &App{DB: db, Config: cfg}
	a.Configuration = &usecase.ConfigurationUC{
		Snapshots: source,
		Log:       zlog.Logger.With().Str("component", "configurator").Logger(),
	}
	a.Catalog = &usecase.CatalogUC{Products: products, Cache: invalidator}
	a.Rules = &usecase.RuleUC{Rules: rules, Products: products, Cache: invalidator}
	a.Orders = &usecase.OrderUC{
		Orders:    orders,
		Customers: customers,
		Config:    a.Configuration,
		Exporter:  export.XLSX{},
	}
	return a, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.Configuration, a.Catalog, a.Rules, a.Orders, a.Config.CORSOrigins)
}

// MigrateAndSeed creates the schema (postgres only) and, when enabled,
// seeds the demo catalog into an empty store.
func (a *App) MigrateAndSeed(ctx context.Context) error {
	if a.DB != nil {
		if err := a.DB.AutoMigrate(
			&domain.Product{}, &domain.Part{}, &domain.Option{},
			&domain.Restriction{}, &domain.PriceRule{},
			&domain.Customer{}, &domain.Order{},
		); err != nil {
			return err
		}
		applySchemaDDL(a.DB, zlog.Logger, schemaDDL)
	}
	if !a.Config.SeedDemo {
		return nil
	}
	seeded, err := SeedDemo(ctx, a.Catalog, a.Rules)
	if err != nil {
		return err
	}
	if seeded {
		zlog.Info().Msg("demo catalog seeded")
	}
	return nil
}

// schemaDDL holds what AutoMigrate cannot express. Failures are logged and
// do not stop startup.
var schemaDDL = []string{
	"CREATE INDEX IF NOT EXISTS idx_part_restrictions_pair ON part_restrictions (LEAST(part_option_id, restricted_part_option_id), GREATEST(part_option_id, restricted_part_option_id))",
	"CREATE INDEX IF NOT EXISTS idx_price_rules_pair ON price_rules (LEAST(part_option_a_id, part_option_b_id), GREATEST(part_option_a_id, part_option_b_id))",
	"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders (created_at DESC)",
	"ALTER TABLE part_options ALTER COLUMN in_stock DROP DEFAULT",
	"ALTER TABLE part_restrictions DROP CONSTRAINT IF EXISTS chk_part_restrictions_distinct",
	"ALTER TABLE part_restrictions ADD CONSTRAINT chk_part_restrictions_distinct CHECK (part_option_id <> restricted_part_option_id) NOT VALID",
}

// applySchemaDDL runs each statement and returns how many failed.
func applySchemaDDL(db *gorm.DB, log zerolog.Logger, stmts []string) int {
	failed := 0
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			failed++
			log.Warn().Err(err).Str("statement", stmt).Msg("schema statement failed")
		}
	}
	return failed
}
