package currency

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramistella/yfin/pkg/client"
	"github.com/gramistella/yfin/pkg/models"
)

func TestNormalizeCountry(t *testing.T) {
	cases := map[string]string{
		"United States":     "UNITED STATES",
		"  côte d'ivoire  ": "COTE D IVOIRE",
		"ESPAÑA":            "ESPANA",
		"U.S.A.":            "U S A",
		"türkiye":           "TURKIYE",
		"":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeCountry(in), "input %q", in)
	}
}

func TestFromCountryTable(t *testing.T) {
	assert.EqualValues(t, "USD", FromCountry("United States"))
	assert.EqualValues(t, "EUR", FromCountry("Germany"))
	assert.EqualValues(t, "GBP", FromCountry("United Kingdom"))
	assert.EqualValues(t, "JPY", FromCountry("Japan"))
	assert.EqualValues(t, "XOF", FromCountry("Côte d'Ivoire"))
	assert.EqualValues(t, "XAF", FromCountry("Cameroon"))
	assert.EqualValues(t, "XCD", FromCountry("Saint Lucia"))
	assert.EqualValues(t, "TRY", FromCountry("Türkiye"))
}

func TestFromCountryHeuristics(t *testing.T) {
	// Not in the table verbatim; the substring matcher catches them.
	assert.EqualValues(t, "KRW", FromCountry("Korea, Republic of"))
	assert.EqualValues(t, "USD", FromCountry("United States Minor Outlying Islands"))
	assert.EqualValues(t, "GBP", FromCountry("Britain"))
}

func TestFromCountryTotalMissIsUSD(t *testing.T) {
	assert.EqualValues(t, "USD", FromCountry("Atlantis"))
	assert.EqualValues(t, "USD", FromCountry(""))
}

func TestReportingOverrideStoresAndWins(t *testing.T) {
	c := client.New()
	override := models.Currency("EUR")

	cur, err := Reporting(context.Background(), c, "SIE.DE", &override, client.CallOpts{})
	require.NoError(t, err)
	assert.EqualValues(t, "EUR", cur)

	// Subsequent calls without override return the stored value with no
	// profile fetch (the default client would fail on live network).
	cur, err = Reporting(context.Background(), c, "SIE.DE", nil, client.CallOpts{})
	require.NoError(t, err)
	assert.EqualValues(t, "EUR", cur)
}

func TestReportingInfersFromProfileCountry(t *testing.T) {
	var profileHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v10/finance/quoteSummary/SIE.DE", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&profileHits, 1)
		fmt.Fprint(w, `{"quoteSummary":{"result":[{
		  "quoteType":{"quoteType":"EQUITY","longName":"Siemens AG"},
		  "assetProfile":{"country":"Germany"}
		}],"error":null}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	e := client.DefaultEndpoints()
	e.QuoteSummary = srv.URL + "/v10/finance/quoteSummary"
	c := client.New(client.WithEndpoints(e), client.WithPreauthCredentials("A3=x", "tok"))

	cur, err := Reporting(context.Background(), c, "SIE.DE", nil, client.CallOpts{})
	require.NoError(t, err)
	assert.EqualValues(t, "EUR", cur)

	// Second call is served from the memo.
	_, err = Reporting(context.Background(), c, "SIE.DE", nil, client.CallOpts{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&profileHits))
}

func TestReportingFundFallsBackToUSD(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v10/finance/quoteSummary/SPY", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":[{
		  "quoteType":{"quoteType":"ETF","shortName":"SPDR S&P 500"},
		  "fundProfile":{"family":"SPDR"}
		}],"error":null}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	e := client.DefaultEndpoints()
	e.QuoteSummary = srv.URL + "/v10/finance/quoteSummary"
	c := client.New(client.WithEndpoints(e), client.WithPreauthCredentials("A3=x", "tok"))

	cur, err := Reporting(context.Background(), c, "SPY", nil, client.CallOpts{})
	require.NoError(t, err)
	assert.EqualValues(t, "USD", cur)
}
