// Package profile loads company and fund profiles. The quoteSummary API is
// the primary source; when it fails, the HTML quote page is scraped for the
// bootstrap JSON the page was rendered from.
package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gramistella/yfin/pkg/client"
	"github.com/gramistella/yfin/pkg/models"
)

// Strategy selects which sources Load may use.
type Strategy int

const (
	// APIThenScrape tries the quoteSummary API first and falls back to the
	// HTML scrape. The default.
	APIThenScrape Strategy = iota
	// APIOnly never scrapes.
	APIOnly
	// ScrapeOnly never calls the API.
	ScrapeOnly
)

// profileModules is the module list the API path requests.
var profileModules = []string{"assetProfile", "quoteType", "fundProfile"}

type quoteTypeModule struct {
	QuoteType string `json:"quoteType"`
	LongName  string `json:"longName"`
	ShortName string `json:"shortName"`
	Symbol    string `json:"symbol"`
}

type assetProfileModule struct {
	Address1            string `json:"address1"`
	City                string `json:"city"`
	State               string `json:"state"`
	Zip                 string `json:"zip"`
	Country             string `json:"country"`
	Website             string `json:"website"`
	Sector              string `json:"sector"`
	Industry            string `json:"industry"`
	LongBusinessSummary string `json:"longBusinessSummary"`
}

type fundProfileModule struct {
	Family         string `json:"family"`
	LegalType      string `json:"legalType"`
	CategoryName   string `json:"categoryName"`
	FundOperations any    `json:"fundOperations"`
}

// Load resolves a symbol's profile using the given strategy.
func Load(ctx context.Context, c *client.Client, symbol string, strategy Strategy, opts client.CallOpts) (models.Profile, error) {
	if symbol == "" {
		return nil, &client.ErrInvalidParams{Detail: "empty symbol"}
	}

	switch strategy {
	case APIOnly:
		return loadAPI(ctx, c, symbol, opts)
	case ScrapeOnly:
		return loadScrape(ctx, c, symbol, opts)
	default:
		p, err := loadAPI(ctx, c, symbol, opts)
		if err == nil {
			return p, nil
		}
		log := c.Logger()
		log.Debug().Err(err).Str("symbol", symbol).Msg("profile api failed, scraping")
		return loadScrape(ctx, c, symbol, opts)
	}
}

func loadAPI(ctx context.Context, c *client.Client, symbol string, opts client.CallOpts) (models.Profile, error) {
	modules, err := c.QuoteSummary(ctx, symbol, profileModules, opts)
	if err != nil {
		return nil, err
	}
	return fromModules(symbol, modules)
}

// fromModules assembles a profile from a quoteSummary module map, shared by
// the API path and the scrape path once the bootstrap JSON is located.
func fromModules(symbol string, modules map[string]json.RawMessage) (models.Profile, error) {
	var qt quoteTypeModule
	if raw, ok := modules["quoteType"]; ok {
		if err := json.Unmarshal(raw, &qt); err != nil {
			return nil, fmt.Errorf("quoteType module: %w", err)
		}
	}

	kind := qt.QuoteType
	if kind == "" {
		// Infer from which profile module is present.
		if _, ok := modules["fundProfile"]; ok {
			kind = "ETF"
		} else if _, ok := modules["summaryProfile"]; ok {
			kind = "EQUITY"
		} else if _, ok := modules["assetProfile"]; ok {
			kind = "EQUITY"
		}
	}

	name := qt.LongName
	if name == "" {
		name = qt.ShortName
	}
	if name == "" {
		name = symbol
	}

	switch kind {
	case "EQUITY":
		raw, ok := modules["assetProfile"]
		if !ok {
			// The scrape path renames assetProfile to summaryProfile.
			raw, ok = modules["summaryProfile"]
		}
		if !ok {
			return nil, &client.ErrMissingData{Symbol: symbol, What: "assetProfile module"}
		}
		var ap assetProfileModule
		if err := json.Unmarshal(raw, &ap); err != nil {
			return nil, fmt.Errorf("assetProfile module: %w", err)
		}
		return &models.CompanyProfile{
			CompanyName: name,
			Sector:      ap.Sector,
			Industry:    ap.Industry,
			Website:     ap.Website,
			Summary:     ap.LongBusinessSummary,
			Address: models.Address{
				Street:  ap.Address1,
				City:    ap.City,
				State:   ap.State,
				Zip:     ap.Zip,
				Country: ap.Country,
			},
		}, nil
	case "ETF", "MUTUALFUND":
		raw, ok := modules["fundProfile"]
		if !ok {
			return nil, &client.ErrMissingData{Symbol: symbol, What: "fundProfile module"}
		}
		var fp fundProfileModule
		if err := json.Unmarshal(raw, &fp); err != nil {
			return nil, fmt.Errorf("fundProfile module: %w", err)
		}
		fk := models.FundKindETF
		if kind == "MUTUALFUND" {
			fk = models.FundKindMutual
		}
		return &models.FundProfile{
			FundName: name,
			Family:   fp.Family,
			Kind:     fk,
		}, nil
	default:
		return nil, &client.ErrMissingData{Symbol: symbol, What: "supported quoteType (got " + kind + ")"}
	}
}
