package collector

import (
	"context"
	"time"

	"github.com/divradar/backend/internal/contracts"
	"github.com/divradar/backend/pkg/config"
	"github.com/divradar/backend/pkg/logger"
)

// Unclassified is the lookup entry assigned when neither the JSON
// profile nor the page fallback yields a sector or country
const Unclassified = "Not Available"

// ProfileEnricher fills in sector/country classification and secondary
// financial ratios for symbols that still lack them
type ProfileEnricher struct {
	provider  contracts.MarketDataProvider
	stocks    contracts.StockRepository
	sectors   contracts.LookupTable
	countries contracts.LookupTable
	cfg       config.JobsConfig
	logger    *logger.Logger
}

// NewProfileEnricher creates a new profile enricher
func NewProfileEnricher(
	provider contracts.MarketDataProvider,
	stocks contracts.StockRepository,
	sectors contracts.LookupTable,
	countries contracts.LookupTable,
	cfg config.JobsConfig,
	log *logger.Logger,
) *ProfileEnricher {
	return &ProfileEnricher{
		provider:  provider,
		stocks:    stocks,
		sectors:   sectors,
		countries: countries,
		cfg:       cfg,
		logger:    log.WithField("module", "profile_enricher"),
	}
}

// ProfileResult summarizes one enrichment run
type ProfileResult struct {
	Enriched int
	Failed   int
}

// Run enriches every symbol missing classification, one at a time with
// the configured inter-request delay. Per-symbol failures are logged and
// counted; the symbol stays unclassified and is retried next run.
func (p *ProfileEnricher) Run(ctx context.Context) (*ProfileResult, error) {
	if err := p.sectors.Preload(ctx); err != nil {
		return nil, err
	}
	if err := p.countries.Preload(ctx); err != nil {
		return nil, err
	}

	symbols, err := p.stocks.ListSymbolsMissingClassification(ctx)
	if err != nil {
		return nil, err
	}

	p.logger.WithField("symbols", len(symbols)).Info("Starting profile enrichment")

	result := &ProfileResult{}
	for _, symbol := range symbols {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		start := time.Now()

		if err := p.enrichSymbol(ctx, symbol); err != nil {
			p.logger.WithError(err).WithField("symbol", symbol).Error("Failed to enrich profile")
			result.Failed++
		} else {
			result.Enriched++
		}

		if err := sleepRemaining(ctx, start, p.cfg.RequestDelay); err != nil {
			return result, err
		}
	}

	p.logger.WithFields(map[string]interface{}{
		"enriched": result.Enriched,
		"failed":   result.Failed,
	}).Info("Profile enrichment completed")

	return result, nil
}

func (p *ProfileEnricher) enrichSymbol(ctx context.Context, symbol string) error {
	profile, err := p.provider.FetchProfile(ctx, symbol)
	if err != nil {
		return err
	}

	update := &contracts.ProfileUpdate{
		Beta:              profile.Beta,
		FreeCashflow:      profile.FreeCashflow,
		OperatingCashflow: profile.OperatingCashflow,
		NetDebtToEBITDA:   NetDebtToEBITDA(profile),
		NetDebtToCapital:  NetDebtToCapital(profile),
		ROIC:              ReturnOnInvestedCapital(profile),
	}

	// A symbol whose profile has no sector or country anywhere resolves
	// to the shared fallback entry instead of staying NULL, so it is
	// not reselected on every run
	sector := profile.Sector
	if sector == "" {
		sector = Unclassified
	}
	sectorID, err := p.sectors.GetOrCreate(ctx, sector)
	if err != nil {
		return err
	}
	update.SectorID = &sectorID

	country := profile.Country
	if country == "" {
		country = Unclassified
	}
	countryID, err := p.countries.GetOrCreate(ctx, country)
	if err != nil {
		return err
	}
	update.CountryID = &countryID

	return p.stocks.UpdateProfile(ctx, symbol, update)
}

// NetDebtToEBITDA computes (total debt - total cash) / EBITDA.
// Returns nil on any missing input or zero EBITDA rather than erroring;
// the stored value simply stays NULL.
func NetDebtToEBITDA(p *contracts.Profile) *float64 {
	if p.TotalDebt == nil || p.TotalCash == nil || p.EBITDA == nil || *p.EBITDA == 0 {
		return nil
	}
	v := (*p.TotalDebt - *p.TotalCash) / *p.EBITDA
	return &v
}

// NetDebtToCapital computes (total debt - total cash) / (debt + equity),
// reconstructing equity from the reported debt-to-equity percentage.
func NetDebtToCapital(p *contracts.Profile) *float64 {
	equity := equityFromDebtRatio(p)
	if equity == nil || p.TotalCash == nil {
		return nil
	}
	capital := *p.TotalDebt + *equity
	if capital == 0 {
		return nil
	}
	v := (*p.TotalDebt - *p.TotalCash) / capital
	return &v
}

// ReturnOnInvestedCapital approximates NOPAT / invested capital:
// revenue x operating margin x (1 - tax) over debt + equity - cash.
// The tax rate is clamped to [0, 0.5]; providers occasionally report
// negative or confiscatory rates on one-off events.
func ReturnOnInvestedCapital(p *contracts.Profile) *float64 {
	equity := equityFromDebtRatio(p)
	if equity == nil || p.TotalCash == nil ||
		p.TotalRevenue == nil || p.OperatingMargins == nil || p.EffectiveTaxRate == nil {
		return nil
	}

	invested := *p.TotalDebt + *equity - *p.TotalCash
	if invested == 0 {
		return nil
	}

	tax := *p.EffectiveTaxRate
	if tax < 0 {
		tax = 0
	}
	if tax > 0.5 {
		tax = 0.5
	}

	v := *p.TotalRevenue * *p.OperatingMargins * (1 - tax) / invested
	return &v
}

// equityFromDebtRatio derives total equity from total debt and the
// debt-to-equity percentage (debt / (d2e / 100)). Nil when either input
// is missing or the ratio is zero.
func equityFromDebtRatio(p *contracts.Profile) *float64 {
	if p.TotalDebt == nil || p.DebtToEquity == nil || *p.DebtToEquity == 0 {
		return nil
	}
	v := *p.TotalDebt / (*p.DebtToEquity / 100)
	return &v
}
