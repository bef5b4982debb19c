package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/divradar/backend/internal/contracts"
	"github.com/divradar/backend/pkg/redis"
)

// quoteResponse mirrors the v7 quote endpoint envelope
type quoteResponse struct {
	QuoteResponse struct {
		Result []rawQuote `json:"result"`
		Error  *apiError  `json:"error"`
	} `json:"quoteResponse"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// rawQuote is the provider's flat quote record. Everything optional is a
// pointer so absent fields survive the contracts mapping as nil.
type rawQuote struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortName"`
	LongName  string `json:"longName"`
	Currency  string `json:"currency"`
	Exchange  string `json:"exchange"`

	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
	RegularMarketVolume        *int64   `json:"regularMarketVolume"`
	AverageDailyVolume3Month   *int64   `json:"averageDailyVolume3Month"`
	MarketCap                  *int64   `json:"marketCap"`
	FiftyTwoWeekHigh           *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow            *float64 `json:"fiftyTwoWeekLow"`
	FiftyDayAverage            *float64 `json:"fiftyDayAverage"`
	TwoHundredDayAverage       *float64 `json:"twoHundredDayAverage"`

	DividendRate                *float64 `json:"dividendRate"`
	DividendYield               *float64 `json:"dividendYield"`
	ExDividendDate              *int64   `json:"exDividendDate"` // epoch seconds
	DividendDate                *int64   `json:"dividendDate"`   // epoch seconds
	PayoutRatio                 *float64 `json:"payoutRatio"`
	FiveYearAvgDividendYield    *float64 `json:"fiveYearAvgDividendYield"`
	TrailingAnnualDividendRate  *float64 `json:"trailingAnnualDividendRate"`
	TrailingAnnualDividendYield *float64 `json:"trailingAnnualDividendYield"`

	TrailingPE                   *float64 `json:"trailingPE"`
	ForwardPE                    *float64 `json:"forwardPE"`
	PriceToBook                  *float64 `json:"priceToBook"`
	PriceToSalesTrailing12Months *float64 `json:"priceToSalesTrailing12Months"`

	EpsTrailingTwelveMonths *float64 `json:"epsTrailingTwelveMonths"`
	EpsForward              *float64 `json:"epsForward"`
	EarningsGrowth          *float64 `json:"earningsGrowth"`
	EarningsQuarterlyGrowth *float64 `json:"earningsQuarterlyGrowth"`
	EarningsTimestamp       *int64   `json:"earningsTimestamp"`

	ProfitMargins     *float64 `json:"profitMargins"`
	GrossMargins      *float64 `json:"grossMargins"`
	OperatingMargins  *float64 `json:"operatingMargins"`
	FreeCashflow      *int64   `json:"freeCashflow"`
	OperatingCashflow *int64   `json:"operatingCashflow"`
	ReturnOnAssets    *float64 `json:"returnOnAssets"`
	ReturnOnEquity    *float64 `json:"returnOnEquity"`
	DebtToEquity      *float64 `json:"debtToEquity"`
	CurrentRatio      *float64 `json:"currentRatio"`
	QuickRatio        *float64 `json:"quickRatio"`

	RecommendationKey       string   `json:"recommendationKey"`
	RecommendationMean      *float64 `json:"recommendationMean"`
	TargetMeanPrice         *float64 `json:"targetMeanPrice"`
	TargetMedianPrice       *float64 `json:"targetMedianPrice"`
	NumberOfAnalystOpinions *int     `json:"numberOfAnalystOpinions"`
}

// FetchQuotes fetches bulk quotes for up to a batch of symbols.
// A provider-side validation failure can still carry valid records in the
// result array; whatever parsed is returned instead of failing the batch.
func (c *Client) FetchQuotes(ctx context.Context, symbols []string) ([]contracts.Quote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	fullURL := fmt.Sprintf("%s?symbols=%s", c.cfg.QuoteBaseURL, url.QueryEscape(strings.Join(symbols, ",")))

	body, err := c.fetch(ctx, fullURL, redis.QuoteRateLimit)
	if err != nil {
		return nil, err
	}

	var parsed quoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse quote response failed: %w", err)
	}

	result := parsed.QuoteResponse.Result
	if apiErr := parsed.QuoteResponse.Error; apiErr != nil {
		if len(result) == 0 {
			return nil, fmt.Errorf("quote request failed: %s: %s", apiErr.Code, apiErr.Description)
		}
		// Partial failure: salvage the records that did come back
		c.logger.WithFields(map[string]interface{}{
			"requested": len(symbols),
			"salvaged":  len(result),
			"error":     apiErr.Description,
		}).Warn("Partial quote batch, salvaging valid records")
	}

	quotes := make([]contracts.Quote, 0, len(result))
	for _, raw := range result {
		if raw.Symbol == "" {
			continue
		}
		quotes = append(quotes, raw.toQuote())
	}

	c.logger.WithFields(map[string]interface{}{
		"requested": len(symbols),
		"received":  len(quotes),
	}).Debug("Fetched quotes")

	return quotes, nil
}

// toQuote maps the provider record to the contracts type
func (r *rawQuote) toQuote() contracts.Quote {
	return contracts.Quote{
		Symbol:    r.Symbol,
		ShortName: r.ShortName,
		LongName:  r.LongName,
		Currency:  r.Currency,
		Exchange:  r.Exchange,

		Price:                r.RegularMarketPrice,
		PreviousClose:        r.RegularMarketPreviousClose,
		Volume:               r.RegularMarketVolume,
		AvgVolume90Day:       r.AverageDailyVolume3Month,
		MarketCap:            r.MarketCap,
		FiftyTwoWeekHigh:     r.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:      r.FiftyTwoWeekLow,
		FiftyDayAverage:      r.FiftyDayAverage,
		TwoHundredDayAverage: r.TwoHundredDayAverage,

		DividendRate:                r.DividendRate,
		DividendYield:               r.DividendYield,
		ExDividendDate:              epochToTime(r.ExDividendDate),
		DividendDate:                epochToTime(r.DividendDate),
		PayoutRatio:                 r.PayoutRatio,
		FiveYearAvgDividendYield:    r.FiveYearAvgDividendYield,
		TrailingAnnualDividendRate:  r.TrailingAnnualDividendRate,
		TrailingAnnualDividendYield: r.TrailingAnnualDividendYield,

		TrailingPE:   r.TrailingPE,
		ForwardPE:    r.ForwardPE,
		PriceToBook:  r.PriceToBook,
		PriceToSales: r.PriceToSalesTrailing12Months,

		TrailingEPS:             r.EpsTrailingTwelveMonths,
		ForwardEPS:              r.EpsForward,
		EarningsGrowth:          r.EarningsGrowth,
		EarningsQuarterlyGrowth: r.EarningsQuarterlyGrowth,
		EarningsTimestamp:       epochToTime(r.EarningsTimestamp),

		ProfitMargins:     r.ProfitMargins,
		GrossMargins:      r.GrossMargins,
		OperatingMargins:  r.OperatingMargins,
		FreeCashflow:      r.FreeCashflow,
		OperatingCashflow: r.OperatingCashflow,
		ReturnOnAssets:    r.ReturnOnAssets,
		ReturnOnEquity:    r.ReturnOnEquity,
		DebtToEquity:      r.DebtToEquity,
		CurrentRatio:      r.CurrentRatio,
		QuickRatio:        r.QuickRatio,

		RecommendationKey:       r.RecommendationKey,
		RecommendationMean:      r.RecommendationMean,
		TargetMeanPrice:         r.TargetMeanPrice,
		TargetMedianPrice:       r.TargetMedianPrice,
		NumberOfAnalystOpinions: r.NumberOfAnalystOpinions,
	}
}

func epochToTime(epoch *int64) *time.Time {
	if epoch == nil {
		return nil
	}
	t := time.Unix(*epoch, 0).UTC()
	return &t
}
