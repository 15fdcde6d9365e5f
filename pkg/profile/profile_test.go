package profile

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramistella/yfin/pkg/client"
	"github.com/gramistella/yfin/pkg/models"
)

func testClient(t *testing.T, mux *http.ServeMux) *client.Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	e := client.DefaultEndpoints()
	e.QuoteSummary = srv.URL + "/v10/finance/quoteSummary"
	e.QuotePage = srv.URL + "/quote"
	return client.New(
		client.WithEndpoints(e),
		client.WithPreauthCredentials("A3=x", "tok"),
	)
}

const companySummaryBody = `{"quoteSummary":{"result":[{
  "quoteType":{"quoteType":"EQUITY","longName":"Apple Inc.","symbol":"AAPL"},
  "assetProfile":{"address1":"One Apple Park Way","city":"Cupertino","state":"CA","zip":"95014","country":"United States","website":"https://www.apple.com","sector":"Technology","industry":"Consumer Electronics","longBusinessSummary":"Designs smartphones."}
}],"error":null}}`

func TestLoadCompanyViaAPI(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v10/finance/quoteSummary/AAPL", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("modules"), "assetProfile")
		fmt.Fprint(w, companySummaryBody)
	})
	c := testClient(t, mux)

	p, err := Load(context.Background(), c, "AAPL", APIOnly, client.CallOpts{})
	require.NoError(t, err)

	company, ok := p.(*models.CompanyProfile)
	require.True(t, ok)
	assert.Equal(t, "Apple Inc.", company.Name())
	assert.Equal(t, "Technology", company.Sector)
	assert.Equal(t, "United States", company.Address.Country)
}

func TestLoadFundViaAPI(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v10/finance/quoteSummary/SPY", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":[{
		  "quoteType":{"quoteType":"ETF","shortName":"SPDR S&P 500"},
		  "fundProfile":{"family":"SPDR State Street Global Advisors","legalType":"Exchange Traded Fund"}
		}],"error":null}}`)
	})
	c := testClient(t, mux)

	p, err := Load(context.Background(), c, "SPY", APIOnly, client.CallOpts{})
	require.NoError(t, err)

	fund, ok := p.(*models.FundProfile)
	require.True(t, ok)
	assert.Equal(t, "SPDR S&P 500", fund.Name())
	assert.Equal(t, models.FundKindETF, fund.Kind)
	assert.Equal(t, "SPDR State Street Global Advisors", fund.Family)
}

func TestLoadUnsupportedQuoteType(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v10/finance/quoteSummary/BTC-USD", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":[{"quoteType":{"quoteType":"CRYPTOCURRENCY"}}],"error":null}}`)
	})
	c := testClient(t, mux)

	_, err := Load(context.Background(), c, "BTC-USD", APIOnly, client.CallOpts{})
	var md *client.ErrMissingData
	assert.ErrorAs(t, err, &md)
}

const storePayload = `{"quoteType":{"quoteType":"EQUITY","longName":"Siemens AG"},"assetProfile":{"country":"Germany","sector":"Industrials"}}`

func TestScrapeRootAppMain(t *testing.T) {
	page := `<html><script>
	root.App.main = {"context":{"dispatcher":{"stores":{"QuoteSummaryStore":` + storePayload + `}}}};
	</script></html>`
	assertScrapedSiemens(t, page)
}

func TestScrapeQuoteSummaryStoreLiteral(t *testing.T) {
	// The store object embeds a string containing braces; the scanner must
	// not close on them.
	payload := `{"quoteType":{"quoteType":"EQUITY","longName":"Siemens AG"},"assetProfile":{"country":"Germany","sector":"Industrials","longBusinessSummary":"Uses {braces} and \"quotes\" inline."}}`
	page := `<html><script>var x = {"QuoteSummaryStore":` + payload + `,"other":1};</script></html>`
	assertScrapedSiemens(t, page)
}

func TestScrapeSvelteKitScript(t *testing.T) {
	page := `<html><head>
	<script type="application/json" data-sveltekit-fetched data-url="x">
	{"status":200,"body":"{\"quoteSummary\":{\"result\":[` + jsonEscape(storePayload) + `]}}"}
	</script></head></html>`
	assertScrapedSiemens(t, page)
}

func TestScrapeGenericJSONScript(t *testing.T) {
	page := `<html><body>
	<script type="application/json">{"data":{"wrapped":{"QuoteSummaryStore":` + storePayload + `}}}</script>
	</body></html>`
	assertScrapedSiemens(t, page)
}

func TestScrapeNoBootstrapData(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quote/SIE.DE", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>nothing here</body></html>")
	})
	c := testClient(t, mux)

	_, err := Load(context.Background(), c, "SIE.DE", ScrapeOnly, client.CallOpts{})
	var se *client.ErrScrape
	assert.ErrorAs(t, err, &se)
}

func TestAPIThenScrapeFallsBack(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v10/finance/quoteSummary/SIE.DE", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/quote/SIE.DE", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><script>var x = {"QuoteSummaryStore":`+storePayload+`};</script></html>`)
	})
	c := testClient(t, mux)

	p, err := Load(context.Background(), c, "SIE.DE", APIThenScrape, client.CallOpts{})
	require.NoError(t, err)
	assert.Equal(t, "Siemens AG", p.Name())
}

func TestMatchBracesStringAware(t *testing.T) {
	in := `{"a":"}","b":{"c":"\"}"}}tail`
	assert.Equal(t, `{"a":"}","b":{"c":"\"}"}}`, matchBraces(in))
	assert.Equal(t, "", matchBraces(`{"unterminated":`))
}

func assertScrapedSiemens(t *testing.T, page string) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/quote/SIE.DE", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	})
	c := testClient(t, mux)

	p, err := Load(context.Background(), c, "SIE.DE", ScrapeOnly, client.CallOpts{})
	require.NoError(t, err)

	company, ok := p.(*models.CompanyProfile)
	require.True(t, ok)
	assert.Equal(t, "Siemens AG", company.Name())
	assert.Equal(t, "Germany", company.Address.Country)
}

// jsonEscape embeds a JSON document inside a JSON string literal.
func jsonEscape(s string) string {
	out := ""
	for _, r := range s {
		switch r {
		case '"':
			out += `\"`
		case '\\':
			out += `\\`
		default:
			out += string(r)
		}
	}
	return out
}
