// Package currency infers a symbol's reporting currency from its profile
// country when the market data itself does not say. Results are memoized on
// the client; overrides always win.
package currency

import (
	"context"
	"strings"

	"github.com/gramistella/yfin/pkg/client"
	"github.com/gramistella/yfin/pkg/models"
	"github.com/gramistella/yfin/pkg/profile"
)

// fallback is used for fund profiles and for countries the table and the
// heuristics both miss.
const fallback = models.Currency("USD")

// Reporting resolves the reporting currency for a symbol. An override is
// stored and returned as-is; otherwise the cached value wins, then the
// profile country lookup. The cache is last-write-wins across both paths.
func Reporting(ctx context.Context, c *client.Client, symbol string, override *models.Currency, opts client.CallOpts) (models.Currency, error) {
	if override != nil {
		c.StoreCurrency(symbol, *override)
		return *override, nil
	}
	if cur, ok := c.CachedCurrency(symbol); ok {
		return cur, nil
	}

	p, err := profile.Load(ctx, c, symbol, profile.APIThenScrape, opts)
	if err != nil {
		return "", err
	}

	cur := fallback
	if company, ok := p.(*models.CompanyProfile); ok {
		cur = FromCountry(company.Address.Country)
	}
	c.StoreCurrency(symbol, cur)
	return cur, nil
}

// FromCountry maps a free-form country string to its currency, falling back
// to USD when nothing matches.
func FromCountry(country string) models.Currency {
	norm := normalizeCountry(country)
	if norm == "" {
		return fallback
	}
	if cur, ok := countryToCurrency[norm]; ok {
		return cur
	}
	for _, hint := range regionHints {
		if strings.Contains(norm, hint.substr) {
			return hint.cur
		}
	}
	return fallback
}

// accentFold maps the accented letters that show up in Yahoo country
// strings onto plain ASCII.
var accentFold = strings.NewReplacer(
	"á", "A", "à", "A", "â", "A", "ä", "A", "ã", "A", "å", "A",
	"é", "E", "è", "E", "ê", "E", "ë", "E",
	"í", "I", "ì", "I", "î", "I", "ï", "I",
	"ó", "O", "ò", "O", "ô", "O", "ö", "O", "õ", "O", "ø", "O",
	"ú", "U", "ù", "U", "û", "U", "ü", "U",
	"ñ", "N", "ç", "C",
	"Á", "A", "À", "A", "Â", "A", "Ä", "A", "Ã", "A", "Å", "A",
	"É", "E", "È", "E", "Ê", "E", "Ë", "E",
	"Í", "I", "Ì", "I", "Î", "I", "Ï", "I",
	"Ó", "O", "Ò", "O", "Ô", "O", "Ö", "O", "Õ", "O", "Ø", "O",
	"Ú", "U", "Ù", "U", "Û", "U", "Ü", "U",
	"Ñ", "N", "Ç", "C",
)

// normalizeCountry uppercases, folds accents, collapses punctuation to
// spaces, and squeezes whitespace runs.
func normalizeCountry(s string) string {
	s = accentFold.Replace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
