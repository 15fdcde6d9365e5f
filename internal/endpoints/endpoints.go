// Package endpoints defines the default Yahoo Finance endpoint URLs.
// Every one of them can be overridden per client; these are only the
// values a freshly built client starts with.
package endpoints

const (
	// Chart is the v8 history endpoint; the symbol is appended as a path segment.
	Chart = "https://query1.finance.yahoo.com/v8/finance/chart"

	// QuoteSummary is the v10 module endpoint; requires cookie+crumb auth.
	QuoteSummary = "https://query1.finance.yahoo.com/v10/finance/quoteSummary"

	// Quote is the batch v7 quote endpoint (symbols=A,B,C).
	Quote = "https://query1.finance.yahoo.com/v7/finance/quote"

	// Options is the v7 option chain endpoint; the symbol is a path segment.
	Options = "https://query1.finance.yahoo.com/v7/finance/options"

	// Search is the v1 search endpoint (q=...).
	Search = "https://query2.finance.yahoo.com/v1/finance/search"

	// News is the ncp endpoint; takes a POST with a JSON body.
	News = "https://finance.yahoo.com/xhr/ncp?queryRef=latestNews&serviceKey=ncp_fin"

	// NewsRSS is the per-symbol headline feed, the fallback when ncp fails.
	NewsRSS = "https://feeds.finance.yahoo.com/rss/2.0/headline"

	// Timeseries is the fundamentals timeseries endpoint; authenticated.
	Timeseries = "https://query1.finance.yahoo.com/ws/fundamentals-timeseries/v1/finance/timeseries"

	// Cookie is hit first to obtain the Yahoo session cookie.
	Cookie = "https://fc.yahoo.com/consent"

	// Crumb exchanges the session cookie for a crumb token (text/plain body).
	Crumb = "https://query1.finance.yahoo.com/v1/test/getcrumb"

	// Stream is the real-time quote streamer.
	Stream = "wss://streamer.finance.yahoo.com/?version=2"

	// QuotePage is the HTML quote page, used by the profile scrape fallback.
	QuotePage = "https://finance.yahoo.com/quote"

	// InsiderSuggest is the Business Insider suggest service used for
	// symbol-to-ISIN resolution.
	InsiderSuggest = "https://markets.businessinsider.com/ajax/SearchController_Suggest"
)

// UserAgent is the default User-Agent sent on every outbound request,
// including the WebSocket handshake.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
