package yahoo

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/divradar/backend/internal/contracts"
	"github.com/divradar/backend/pkg/redis"
)

// scrapeProfilePage scrapes sector and country from the public company
// profile page. Only used as a fallback when the quoteSummary JSON omits
// the assetProfile module.
func (c *Client) scrapeProfilePage(ctx context.Context, symbol string) (*contracts.Profile, error) {
	fullURL := fmt.Sprintf("%s/%s/profile", c.cfg.ProfileBaseURL, url.PathEscape(symbol))

	body, err := c.fetch(ctx, fullURL, redis.SummaryRateLimit)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse profile page failed: %w", err)
	}

	profile := &contracts.Profile{}

	// Sector is rendered as a labelled dt/dd pair
	doc.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		label := strings.TrimSpace(dt.Text())
		value := strings.TrimSpace(dt.Next().Text())
		if value == "" {
			return
		}
		switch {
		case strings.HasPrefix(label, "Sector"):
			profile.Sector = value
		case strings.HasPrefix(label, "Country"):
			profile.Country = value
		}
	})

	// The address block carries the country as its last line when no
	// explicit label exists
	if profile.Country == "" {
		address := doc.Find("div[data-testid=asset-profile] address").First()
		lines := strings.Split(strings.TrimSpace(address.Text()), "\n")
		if len(lines) > 0 {
			last := strings.TrimSpace(lines[len(lines)-1])
			if last != "" && !strings.ContainsAny(last, "0123456789") {
				profile.Country = last
			}
		}
	}

	if profile.Sector == "" && profile.Country == "" {
		return nil, fmt.Errorf("profile page had no sector or country for %s", symbol)
	}

	return profile, nil
}
