package s0_data

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/divradar/backend/internal/contracts"
)

// StockRepository implements contracts.StockRepository over the stocks
// table. Snapshot fields are written by the importer, derived fields only
// by the engines; no two writers share a column set.
type StockRepository struct {
	pool *pgxpool.Pool
}

// NewStockRepository creates a new stock repository
func NewStockRepository(pool *pgxpool.Pool) *StockRepository {
	return &StockRepository{pool: pool}
}

// UpsertSnapshot writes current snapshot fields for a symbol. Fields the
// quote did not carry stay at their stored value (COALESCE on conflict),
// so a sparse quote never blanks a previously full row.
func (r *StockRepository) UpsertSnapshot(ctx context.Context, q *contracts.Quote) error {
	query := `
		INSERT INTO stocks (
			symbol, short_name, long_name, currency, exchange,
			price, previous_close, volume, avg_volume_90d, market_cap,
			fifty_two_week_high, fifty_two_week_low, fifty_day_average, two_hundred_day_average,
			dividend_rate, dividend_yield, ex_dividend_date, dividend_date,
			payout_ratio, five_year_avg_dividend_yield,
			trailing_annual_dividend_rate, trailing_annual_dividend_yield,
			trailing_pe, forward_pe, price_to_book, price_to_sales,
			trailing_eps, forward_eps, earnings_growth, earnings_quarterly_growth, earnings_timestamp,
			profit_margins, gross_margins, operating_margins,
			free_cashflow, operating_cashflow, return_on_assets, return_on_equity,
			debt_to_equity, current_ratio, quick_ratio,
			recommendation_key, recommendation_mean, target_mean_price, target_median_price,
			number_of_analyst_opinions, last_updated
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14,
			$15, $16, $17, $18,
			$19, $20,
			$21, $22,
			$23, $24, $25, $26,
			$27, $28, $29, $30, $31,
			$32, $33, $34,
			$35, $36, $37, $38,
			$39, $40, $41,
			$42, $43, $44, $45,
			$46, NOW()
		)
		ON CONFLICT (symbol) DO UPDATE SET
			short_name = COALESCE(EXCLUDED.short_name, stocks.short_name),
			long_name = COALESCE(EXCLUDED.long_name, stocks.long_name),
			currency = COALESCE(EXCLUDED.currency, stocks.currency),
			exchange = COALESCE(EXCLUDED.exchange, stocks.exchange),
			price = COALESCE(EXCLUDED.price, stocks.price),
			previous_close = COALESCE(EXCLUDED.previous_close, stocks.previous_close),
			volume = COALESCE(EXCLUDED.volume, stocks.volume),
			avg_volume_90d = COALESCE(EXCLUDED.avg_volume_90d, stocks.avg_volume_90d),
			market_cap = COALESCE(EXCLUDED.market_cap, stocks.market_cap),
			fifty_two_week_high = COALESCE(EXCLUDED.fifty_two_week_high, stocks.fifty_two_week_high),
			fifty_two_week_low = COALESCE(EXCLUDED.fifty_two_week_low, stocks.fifty_two_week_low),
			fifty_day_average = COALESCE(EXCLUDED.fifty_day_average, stocks.fifty_day_average),
			two_hundred_day_average = COALESCE(EXCLUDED.two_hundred_day_average, stocks.two_hundred_day_average),
			dividend_rate = COALESCE(EXCLUDED.dividend_rate, stocks.dividend_rate),
			dividend_yield = COALESCE(EXCLUDED.dividend_yield, stocks.dividend_yield),
			ex_dividend_date = COALESCE(EXCLUDED.ex_dividend_date, stocks.ex_dividend_date),
			dividend_date = COALESCE(EXCLUDED.dividend_date, stocks.dividend_date),
			payout_ratio = COALESCE(EXCLUDED.payout_ratio, stocks.payout_ratio),
			five_year_avg_dividend_yield = COALESCE(EXCLUDED.five_year_avg_dividend_yield, stocks.five_year_avg_dividend_yield),
			trailing_annual_dividend_rate = COALESCE(EXCLUDED.trailing_annual_dividend_rate, stocks.trailing_annual_dividend_rate),
			trailing_annual_dividend_yield = COALESCE(EXCLUDED.trailing_annual_dividend_yield, stocks.trailing_annual_dividend_yield),
			trailing_pe = COALESCE(EXCLUDED.trailing_pe, stocks.trailing_pe),
			forward_pe = COALESCE(EXCLUDED.forward_pe, stocks.forward_pe),
			price_to_book = COALESCE(EXCLUDED.price_to_book, stocks.price_to_book),
			price_to_sales = COALESCE(EXCLUDED.price_to_sales, stocks.price_to_sales),
			trailing_eps = COALESCE(EXCLUDED.trailing_eps, stocks.trailing_eps),
			forward_eps = COALESCE(EXCLUDED.forward_eps, stocks.forward_eps),
			earnings_growth = COALESCE(EXCLUDED.earnings_growth, stocks.earnings_growth),
			earnings_quarterly_growth = COALESCE(EXCLUDED.earnings_quarterly_growth, stocks.earnings_quarterly_growth),
			earnings_timestamp = COALESCE(EXCLUDED.earnings_timestamp, stocks.earnings_timestamp),
			profit_margins = COALESCE(EXCLUDED.profit_margins, stocks.profit_margins),
			gross_margins = COALESCE(EXCLUDED.gross_margins, stocks.gross_margins),
			operating_margins = COALESCE(EXCLUDED.operating_margins, stocks.operating_margins),
			free_cashflow = COALESCE(EXCLUDED.free_cashflow, stocks.free_cashflow),
			operating_cashflow = COALESCE(EXCLUDED.operating_cashflow, stocks.operating_cashflow),
			return_on_assets = COALESCE(EXCLUDED.return_on_assets, stocks.return_on_assets),
			return_on_equity = COALESCE(EXCLUDED.return_on_equity, stocks.return_on_equity),
			debt_to_equity = COALESCE(EXCLUDED.debt_to_equity, stocks.debt_to_equity),
			current_ratio = COALESCE(EXCLUDED.current_ratio, stocks.current_ratio),
			quick_ratio = COALESCE(EXCLUDED.quick_ratio, stocks.quick_ratio),
			recommendation_key = COALESCE(EXCLUDED.recommendation_key, stocks.recommendation_key),
			recommendation_mean = COALESCE(EXCLUDED.recommendation_mean, stocks.recommendation_mean),
			target_mean_price = COALESCE(EXCLUDED.target_mean_price, stocks.target_mean_price),
			target_median_price = COALESCE(EXCLUDED.target_median_price, stocks.target_median_price),
			number_of_analyst_opinions = COALESCE(EXCLUDED.number_of_analyst_opinions, stocks.number_of_analyst_opinions),
			last_updated = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		q.Symbol, nilIfEmpty(q.ShortName), nilIfEmpty(q.LongName), nilIfEmpty(q.Currency), nilIfEmpty(q.Exchange),
		q.Price, q.PreviousClose, q.Volume, q.AvgVolume90Day, q.MarketCap,
		q.FiftyTwoWeekHigh, q.FiftyTwoWeekLow, q.FiftyDayAverage, q.TwoHundredDayAverage,
		q.DividendRate, q.DividendYield, q.ExDividendDate, q.DividendDate,
		q.PayoutRatio, q.FiveYearAvgDividendYield,
		q.TrailingAnnualDividendRate, q.TrailingAnnualDividendYield,
		q.TrailingPE, q.ForwardPE, q.PriceToBook, q.PriceToSales,
		q.TrailingEPS, q.ForwardEPS, q.EarningsGrowth, q.EarningsQuarterlyGrowth, q.EarningsTimestamp,
		q.ProfitMargins, q.GrossMargins, q.OperatingMargins,
		q.FreeCashflow, q.OperatingCashflow, q.ReturnOnAssets, q.ReturnOnEquity,
		q.DebtToEquity, q.CurrentRatio, q.QuickRatio,
		nilIfEmpty(q.RecommendationKey), q.RecommendationMean, q.TargetMeanPrice, q.TargetMedianPrice,
		q.NumberOfAnalystOpinions,
	)
	return err
}

// Delete removes a symbol and its event rows
func (r *StockRepository) Delete(ctx context.Context, symbol string) error {
	// Event tables reference stocks.symbol; clear them first
	for _, table := range []string{"stock_history", "dividends", "splits"} {
		if _, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE symbol = $1`, table), symbol); err != nil {
			return fmt.Errorf("delete %s rows: %w", table, err)
		}
	}

	_, err := r.pool.Exec(ctx, `DELETE FROM stocks WHERE symbol = $1`, symbol)
	return err
}

// ListSymbols returns every tracked symbol
func (r *StockRepository) ListSymbols(ctx context.Context) ([]string, error) {
	return r.querySymbols(ctx, `SELECT symbol FROM stocks ORDER BY symbol`)
}

// ListSymbolsMissingClassification returns symbols the profile enricher
// still has to fill in
func (r *StockRepository) ListSymbolsMissingClassification(ctx context.Context) ([]string, error) {
	return r.querySymbols(ctx, `
		SELECT symbol FROM stocks
		WHERE sector_id IS NULL OR country_id IS NULL
		ORDER BY symbol
	`)
}

// ListSymbolsMissingRecessionReturn returns the next page of the recession
// backfill. Each processed symbol gets a non-NULL recession_return, which
// removes it from this selection; the engine loops until the page is empty.
func (r *StockRepository) ListSymbolsMissingRecessionReturn(ctx context.Context, limit int) ([]string, error) {
	return r.querySymbols(ctx, `
		SELECT symbol FROM stocks
		WHERE recession_return IS NULL
		ORDER BY symbol
		LIMIT $1
	`, limit)
}

func (r *StockRepository) querySymbols(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// UpdateDividendMetrics overwrites the derived dividend fields for one
// symbol. Re-running the engine with unchanged events writes identical
// values; nothing accumulates.
func (r *StockRepository) UpdateDividendMetrics(ctx context.Context, m *contracts.DividendMetrics) error {
	annualTotals, err := json.Marshal(m.AnnualTotals)
	if err != nil {
		return fmt.Errorf("marshal annual totals: %w", err)
	}

	query := `
		UPDATE stocks SET
			dividend_growth_1_year = $2,
			dividend_growth_5_year = $3,
			dividend_growth_10_year = $4,
			dividend_growth_streak = $5,
			uninterrupted_dividend_streak = $6,
			latest_dividend_raise_date = $7,
			payment_frequency = NULLIF($8, '')::payment_frequency,
			payment_schedule_months = $9,
			annual_total_dividends = $10,
			last_updated = NOW()
		WHERE symbol = $1
	`

	_, err = r.pool.Exec(ctx, query,
		m.Symbol,
		m.Growth1Year, m.Growth5Year, m.Growth10Year,
		m.GrowthStreak, m.UninterruptedStreak, m.LatestRaiseDate,
		string(m.PaymentFrequency), m.PaymentScheduleMonths,
		annualTotals,
	)
	return err
}

// UpdateRecessionPerformance overwrites the derived recession fields
func (r *StockRepository) UpdateRecessionPerformance(ctx context.Context, p *contracts.RecessionPerformance) error {
	query := `
		UPDATE stocks SET
			recession_return = $2,
			recession_dividend_performance = $3,
			last_updated = NOW()
		WHERE symbol = $1
	`

	_, err := r.pool.Exec(ctx, query, p.Symbol, p.TotalReturn, string(p.DividendStatus))
	return err
}

// UpdateProfile writes classification ids and secondary financials.
// Nil fields keep their stored value.
func (r *StockRepository) UpdateProfile(ctx context.Context, symbol string, u *contracts.ProfileUpdate) error {
	query := `
		UPDATE stocks SET
			sector_id = COALESCE($2, sector_id),
			country_id = COALESCE($3, country_id),
			beta = COALESCE($4, beta),
			free_cashflow = COALESCE($5, free_cashflow),
			operating_cashflow = COALESCE($6, operating_cashflow),
			net_debt_to_ebitda = COALESCE($7, net_debt_to_ebitda),
			net_debt_to_capital = COALESCE($8, net_debt_to_capital),
			return_on_invested_capital = COALESCE($9, return_on_invested_capital),
			last_updated = NOW()
		WHERE symbol = $1
	`

	_, err := r.pool.Exec(ctx, query, symbol,
		u.SectorID, u.CountryID,
		u.Beta, u.FreeCashflow, u.OperatingCashflow,
		u.NetDebtToEBITDA, u.NetDebtToCapital, u.ROIC,
	)
	return err
}

// nilIfEmpty maps an empty string to NULL so COALESCE keeps stored values
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
