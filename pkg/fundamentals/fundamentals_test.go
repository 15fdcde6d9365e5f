package fundamentals

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramistella/yfin/pkg/client"
)

func testClient(t *testing.T, mux *http.ServeMux) *client.Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	e := client.DefaultEndpoints()
	e.Timeseries = srv.URL + "/ws/fundamentals-timeseries/v1/finance/timeseries"
	return client.New(client.WithEndpoints(e), client.WithPreauthCredentials("A3=x", "tok"))
}

func TestTimeseries(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/fundamentals-timeseries/v1/finance/timeseries/AAPL", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "annualTotalRevenue", q.Get("type"))
		assert.Equal(t, "tok", q.Get("crumb"))
		fmt.Fprint(w, `{"timeseries":{"result":[{
		  "meta":{"symbol":["AAPL"],"type":["annualTotalRevenue"]},
		  "timestamp":[1664496000,1695945600],
		  "annualTotalRevenue":[
		    {"asOfDate":"2023-09-30","currencyCode":"USD","reportedValue":{"raw":383285000000,"fmt":"383.29B"}},
		    {"asOfDate":"2022-09-30","currencyCode":"USD","reportedValue":{"raw":394328000000,"fmt":"394.33B"}},
		    null
		  ]
		}],"error":null}}`)
	})
	c := testClient(t, mux)

	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows, err := Timeseries(context.Background(), c, "AAPL", []string{"annualTotalRevenue"}, start, end, client.CallOpts{})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "annualTotalRevenue", row.Type)
	assert.EqualValues(t, "USD", row.Currency)
	require.Len(t, row.Points, 2)
	// Sorted by period end, null observations dropped.
	assert.Equal(t, "2022-09-30", row.Points[0].AsOf)
	assert.Equal(t, 394328000000.0, row.Points[0].Value)
	assert.Equal(t, "2023-09-30", row.Points[1].AsOf)
}

func TestTimeseriesInvalidWindow(t *testing.T) {
	c := client.New()
	now := time.Now()
	_, err := Timeseries(context.Background(), c, "AAPL", []string{"annualTotalRevenue"}, now, now, client.CallOpts{})
	var id *client.ErrInvalidDates
	assert.ErrorAs(t, err, &id)
}

func TestTimeseriesNoTypes(t *testing.T) {
	c := client.New()
	_, err := Timeseries(context.Background(), c, "AAPL", nil, time.Unix(0, 0), time.Now(), client.CallOpts{})
	var ip *client.ErrInvalidParams
	assert.ErrorAs(t, err, &ip)
}

func TestTimeseriesEmptyResult(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/fundamentals-timeseries/v1/finance/timeseries/NOPE", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"timeseries":{"result":[],"error":null}}`)
	})
	c := testClient(t, mux)

	_, err := Timeseries(context.Background(), c, "NOPE", []string{"annualTotalRevenue"}, time.Unix(0, 0), time.Now(), client.CallOpts{})
	var md *client.ErrMissingData
	assert.ErrorAs(t, err, &md)
}
