package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/divradar/backend/internal/contracts"
	"github.com/divradar/backend/pkg/redis"
)

// summaryResponse mirrors the v10 quoteSummary endpoint envelope
type summaryResponse struct {
	QuoteSummary struct {
		Result []summaryResult `json:"result"`
		Error  *apiError       `json:"error"`
	} `json:"quoteSummary"`
}

type summaryResult struct {
	AssetProfile *struct {
		Sector  string `json:"sector"`
		Country string `json:"country"`
	} `json:"assetProfile"`
	FinancialData *struct {
		Beta              *rawValue `json:"beta"`
		FreeCashflow      *rawValue `json:"freeCashflow"`
		OperatingCashflow *rawValue `json:"operatingCashflow"`
		EBITDA            *rawValue `json:"ebitda"`
		TotalCash         *rawValue `json:"totalCash"`
		TotalDebt         *rawValue `json:"totalDebt"`
		DebtToEquity      *rawValue `json:"debtToEquity"`
		TotalRevenue      *rawValue `json:"totalRevenue"`
		OperatingMargins  *rawValue `json:"operatingMargins"`
		ProfitMargins     *rawValue `json:"profitMargins"`
		EffectiveTaxRate  *rawValue `json:"effectiveTaxRate"`
	} `json:"financialData"`
	IncomeStatementHistory *struct {
		Statements []struct {
			TaxProvision    *rawValue `json:"taxProvision"`
			IncomeBeforeTax *rawValue `json:"incomeBeforeTax"`
		} `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistory"`
}

// effectiveTaxRate takes the rate financialData reports outright, or
// derives it from the most recent annual statement (tax provision over
// pre-tax income). Nil when neither source has the inputs.
func (r *summaryResult) effectiveTaxRate() *float64 {
	if fd := r.FinancialData; fd != nil {
		if rate := fd.EffectiveTaxRate.value(); rate != nil {
			return rate
		}
	}
	if ish := r.IncomeStatementHistory; ish != nil {
		for _, stmt := range ish.Statements {
			tax := stmt.TaxProvision.value()
			pretax := stmt.IncomeBeforeTax.value()
			if tax == nil || pretax == nil || *pretax == 0 {
				continue
			}
			rate := *tax / *pretax
			return &rate
		}
	}
	return nil
}

// rawValue is the provider's {raw, fmt} number wrapper
type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (v *rawValue) value() *float64 {
	if v == nil {
		return nil
	}
	return v.Raw
}

// FetchProfile fetches classification and secondary financial data for a
// symbol. When the JSON profile omits sector or country, the HTML profile
// page is scraped as a fallback before giving up on those fields.
func (c *Client) FetchProfile(ctx context.Context, symbol string) (*contracts.Profile, error) {
	params := url.Values{}
	params.Set("modules", "assetProfile,financialData,incomeStatementHistory")

	fullURL := fmt.Sprintf("%s/%s?%s", c.cfg.SummaryBaseURL, url.PathEscape(symbol), params.Encode())

	body, err := c.fetch(ctx, fullURL, redis.SummaryRateLimit)
	if err != nil {
		return nil, err
	}

	var parsed summaryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse summary response failed: %w", err)
	}

	if apiErr := parsed.QuoteSummary.Error; apiErr != nil {
		return nil, fmt.Errorf("summary request failed: %s: %s", apiErr.Code, apiErr.Description)
	}
	if len(parsed.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("summary response empty for %s", symbol)
	}

	result := parsed.QuoteSummary.Result[0]
	profile := &contracts.Profile{}

	if ap := result.AssetProfile; ap != nil {
		profile.Sector = ap.Sector
		profile.Country = ap.Country
	}

	if fd := result.FinancialData; fd != nil {
		profile.Beta = fd.Beta.value()
		profile.FreeCashflow = fd.FreeCashflow.value()
		profile.OperatingCashflow = fd.OperatingCashflow.value()
		profile.EBITDA = fd.EBITDA.value()
		profile.TotalCash = fd.TotalCash.value()
		profile.TotalDebt = fd.TotalDebt.value()
		profile.DebtToEquity = fd.DebtToEquity.value()
		profile.TotalRevenue = fd.TotalRevenue.value()
		profile.OperatingMargins = fd.OperatingMargins.value()
		profile.ProfitMargins = fd.ProfitMargins.value()
	}
	profile.EffectiveTaxRate = result.effectiveTaxRate()

	// The assetProfile module is missing for a fair number of non-US
	// listings; the public profile page usually still has the fields.
	if profile.Sector == "" || profile.Country == "" {
		if scraped, err := c.scrapeProfilePage(ctx, symbol); err == nil {
			if profile.Sector == "" {
				profile.Sector = scraped.Sector
			}
			if profile.Country == "" {
				profile.Country = scraped.Country
			}
		} else {
			c.logger.WithError(err).WithField("symbol", symbol).Debug("Profile page fallback failed")
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":  symbol,
		"sector":  profile.Sector,
		"country": profile.Country,
	}).Debug("Fetched profile")

	return profile, nil
}
