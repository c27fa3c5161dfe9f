package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/shopcore/internal/config"
	"github.com/noah-isme/shopcore/internal/money"
	"github.com/noah-isme/shopcore/internal/obs"
	"github.com/noah-isme/shopcore/internal/pricing"
	"github.com/noah-isme/shopcore/internal/store"
)

type variantRef string

func (v variantRef) VariantID() string { return string(v) }

type productRef string

func (p productRef) ProductID() string { return string(p) }

func main() {
	var (
		variantID = flag.String("variant", "", "variant identifier to price")
		productID = flag.String("product", "", "product identifier to price as a range")
		currency  = flag.String("currency", "", "currency code, defaults to DEFAULT_CURRENCY")
		qty       = flag.String("quantity", "1", "quantity being priced")
		discount  = flag.Bool("discount", true, "apply discount stages")
		net       = flag.String("net", "", "offline mode: net base price for the subject")
		gross     = flag.String("gross", "", "offline mode: gross base price for the subject")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()
	obs.MustRegisterDomainMetrics("shopcore", nil)

	if *variantID == "" && *productID == "" {
		logger.Fatal().Msg("one of -variant or -product is required")
	}
	cur := strings.ToUpper(strings.TrimSpace(*currency))
	if cur == "" {
		cur = cfg.DefaultCurrency
	}

	ctx := context.Background()
	source, err := buildSource(ctx, cfg, logger, *variantID, *productID, *net, *gross, cur)
	if err != nil {
		logger.Fatal().Err(err).Msg("configure price source")
	}

	registry := pricing.NewDefaultRegistry(source)
	handlers, err := registry.Build(pricing.ParseSpecs(cfg.PricingHandlers))
	if err != nil {
		logger.Fatal().Err(err).Str("spec", cfg.PricingHandlers).Msg("build handler chain")
	}
	chain := pricing.NewChain(handlers...)
	chain.Logger = logger

	quantity, err := decimal.NewFromString(*qty)
	if err != nil {
		logger.Fatal().Err(err).Str("quantity", *qty).Msg("parse quantity")
	}
	pctx := pricing.Context{Currency: cur, Quantity: quantity, Discount: *discount}

	out := make(map[string]any)
	if *variantID != "" {
		price, err := chain.VariantPrice(ctx, variantRef(*variantID), pctx)
		if err != nil {
			logger.Fatal().Err(err).Str("variant", *variantID).Msg("compute variant price")
		}
		out["variant"] = *variantID
		out["net"] = price.Net.String()
		out["gross"] = price.Gross.String()
		out["currency"] = price.Currency
	} else {
		r, err := chain.ProductPriceRange(ctx, productRef(*productID), pctx)
		if err != nil {
			logger.Fatal().Err(err).Str("product", *productID).Msg("compute price range")
		}
		out["product"] = *productID
		out["min"] = map[string]string{"net": r.Min.Net.String(), "gross": r.Min.Gross.String()}
		out["max"] = map[string]string{"net": r.Max.Net.String(), "gross": r.Max.Gross.String()}
		out["currency"] = r.Min.Currency
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Fatal().Err(err).Msg("encode output")
	}
}

// buildSource picks the base-price authority: Postgres when configured,
// otherwise an offline static source seeded from the -net/-gross flags.
// A configured Redis wraps either with the price cache.
func buildSource(ctx context.Context, cfg *config.Config, logger zerolog.Logger, variantID, productID, net, gross, currency string) (pricing.PriceSource, error) {
	var source pricing.PriceSource
	switch {
	case strings.TrimSpace(cfg.DatabaseURL) != "":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		source = store.NewPostgres(pool)
	case strings.TrimSpace(net) != "" && strings.TrimSpace(gross) != "":
		base, err := money.Parse(net, gross, currency)
		if err != nil {
			return nil, err
		}
		static := &pricing.StaticSource{
			Prices: map[string]money.Price{},
			Ranges: map[string]money.Range{},
		}
		if variantID != "" {
			static.Prices[variantID] = base
		}
		if productID != "" {
			static.Ranges[productID] = money.NewRange(base, base)
		}
		source = static
	default:
		return nil, errors.New("set DATABASE_URL or provide -net and -gross for offline mode")
	}

	if strings.TrimSpace(cfg.RedisURL) != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		client := redis.NewClient(opts)
		logger.Info().Dur("ttl", cfg.PriceCacheTTL).Msg("price cache enabled")
		source = pricing.NewCachedSource(source, client, cfg.PriceCacheTTL)
	}
	return source, nil
}
