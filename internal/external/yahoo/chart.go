package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/divradar/backend/internal/contracts"
	"github.com/divradar/backend/pkg/redis"
)

// chartResponse mirrors the v8 chart endpoint envelope
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Volume []*int64 `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
	Events struct {
		Dividends map[string]rawDividend `json:"dividends"`
		Splits    map[string]rawSplit    `json:"splits"`
	} `json:"events"`
}

type rawDividend struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

type rawSplit struct {
	Date        int64 `json:"date"`
	Numerator   int   `json:"numerator"`
	Denominator int   `json:"denominator"`
}

// FetchHistory fetches daily bars plus dividend and split events for one
// symbol since the given date. Bars and events come back date ascending.
func (c *Client) FetchHistory(ctx context.Context, symbol string, since time.Time) (*contracts.History, error) {
	params := url.Values{}
	params.Set("period1", fmt.Sprintf("%d", since.Unix()))
	params.Set("period2", fmt.Sprintf("%d", time.Now().Unix()))
	params.Set("interval", "1d")
	params.Set("events", "div|split")

	fullURL := fmt.Sprintf("%s/%s?%s", c.cfg.ChartBaseURL, url.PathEscape(symbol), params.Encode())

	body, err := c.fetch(ctx, fullURL, redis.ChartRateLimit)
	if err != nil {
		return nil, err
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse chart response failed: %w", err)
	}

	if apiErr := parsed.Chart.Error; apiErr != nil {
		return nil, fmt.Errorf("chart request failed: %s: %s", apiErr.Code, apiErr.Description)
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart response empty for %s", symbol)
	}

	history := c.mapChartResult(symbol, &parsed.Chart.Result[0])

	c.logger.WithFields(map[string]interface{}{
		"symbol":    symbol,
		"bars":      len(history.Bars),
		"dividends": len(history.Dividends),
		"splits":    len(history.Splits),
	}).Debug("Fetched history")

	return history, nil
}

// mapChartResult turns the parallel-array chart payload into typed rows.
// Rows with a missing adjusted close are dropped (halted/unpriced days).
func (c *Client) mapChartResult(symbol string, result *chartResult) *contracts.History {
	history := &contracts.History{Symbol: symbol}

	var adjCloses []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjCloses = result.Indicators.AdjClose[0].AdjClose
	}
	var volumes []*int64
	if len(result.Indicators.Quote) > 0 {
		volumes = result.Indicators.Quote[0].Volume
	}

	for i, ts := range result.Timestamp {
		if i >= len(adjCloses) || adjCloses[i] == nil {
			continue
		}
		bar := contracts.PriceBar{
			Symbol:   symbol,
			Date:     time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			AdjClose: *adjCloses[i],
		}
		if i < len(volumes) && volumes[i] != nil {
			bar.Volume = *volumes[i]
		}
		history.Bars = append(history.Bars, bar)
	}

	for _, d := range result.Events.Dividends {
		history.Dividends = append(history.Dividends, contracts.DividendEvent{
			Symbol: symbol,
			Date:   time.Unix(d.Date, 0).UTC().Truncate(24 * time.Hour),
			Amount: d.Amount,
		})
	}

	for _, s := range result.Events.Splits {
		history.Splits = append(history.Splits, contracts.SplitEvent{
			Symbol:      symbol,
			Date:        time.Unix(s.Date, 0).UTC().Truncate(24 * time.Hour),
			Numerator:   s.Numerator,
			Denominator: s.Denominator,
		})
	}

	// Event maps are keyed by timestamp string; restore chronology
	sort.Slice(history.Dividends, func(i, j int) bool {
		return history.Dividends[i].Date.Before(history.Dividends[j].Date)
	})
	sort.Slice(history.Splits, func(i, j int) bool {
		return history.Splits[i].Date.Before(history.Splits[j].Date)
	})

	return history
}
