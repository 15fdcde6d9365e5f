package ticker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gramistella/yfin/pkg/models"
	"github.com/gramistella/yfin/pkg/quote"
)

// flexFloat tolerates both the raw-number and the {"raw":…} encodings the
// quoteSummary modules switch between.
type flexFloat struct {
	Value *float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var plain float64
	if err := json.Unmarshal(data, &plain); err == nil {
		f.Value = &plain
		return nil
	}
	var wrapped struct {
		Raw *float64 `json:"raw"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		f.Value = wrapped.Raw
	}
	// Anything else (null, "") reads as absent.
	return nil
}

type financialDataModule struct {
	TargetMeanPrice         flexFloat `json:"targetMeanPrice"`
	TargetMedianPrice       flexFloat `json:"targetMedianPrice"`
	TargetHighPrice         flexFloat `json:"targetHighPrice"`
	TargetLowPrice          flexFloat `json:"targetLowPrice"`
	NumberOfAnalystOpinions flexFloat `json:"numberOfAnalystOpinions"`
	CurrentPrice            flexFloat `json:"currentPrice"`
}

type recommendationTrendModule struct {
	Trend []struct {
		Period     string `json:"period"`
		StrongBuy  int    `json:"strongBuy"`
		Buy        int    `json:"buy"`
		Hold       int    `json:"hold"`
		Sell       int    `json:"sell"`
		StrongSell int    `json:"strongSell"`
	} `json:"trend"`
}

type esgScoresModule struct {
	TotalEsg         flexFloat `json:"totalEsg"`
	EnvironmentScore flexFloat `json:"environmentScore"`
	SocialScore      flexFloat `json:"socialScore"`
	GovernanceScore  flexFloat `json:"governanceScore"`
}

// Info fans out the quote, profile, and analyst legs concurrently and
// assembles the composite record. Only the profile leg is load-bearing: the
// other four degrade to absent fields on error.
func (t *Ticker) Info(ctx context.Context) (*models.Info, error) {
	info := &models.Info{Symbol: t.symbol}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := t.Profile(gctx)
		if err != nil {
			return err
		}
		mu.Lock()
		info.Profile = p
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		q, err := quote.One(gctx, t.c, t.symbol, t.opts)
		if err != nil {
			return nil
		}
		mu.Lock()
		info.Quote = q
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		modules, err := t.c.QuoteSummary(gctx, t.symbol,
			[]string{"financialData", "recommendationTrend"}, t.opts)
		if err != nil {
			return nil
		}
		pt := decodePriceTarget(modules["financialData"])
		rec := decodeRecommendations(modules["recommendationTrend"])
		mu.Lock()
		info.PriceTarget = pt
		info.Recommendations = rec
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		modules, err := t.c.QuoteSummary(gctx, t.symbol, []string{"esgScores"}, t.opts)
		if err != nil {
			return nil
		}
		esg := decodeEsg(modules["esgScores"])
		mu.Lock()
		info.Esg = esg
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	info.AsOf = time.Now().UTC()
	return info, nil
}

func decodePriceTarget(raw json.RawMessage) *models.PriceTarget {
	if raw == nil {
		return nil
	}
	var fd financialDataModule
	if err := json.Unmarshal(raw, &fd); err != nil {
		return nil
	}
	pt := &models.PriceTarget{
		Mean:    fd.TargetMeanPrice.Value,
		Median:  fd.TargetMedianPrice.Value,
		High:    fd.TargetHighPrice.Value,
		Low:     fd.TargetLowPrice.Value,
		Current: fd.CurrentPrice.Value,
	}
	if n := fd.NumberOfAnalystOpinions.Value; n != nil {
		count := int(*n)
		pt.NumberOfAnalysts = &count
	}
	if pt.Mean == nil && pt.Median == nil && pt.High == nil && pt.Low == nil {
		return nil
	}
	return pt
}

func decodeRecommendations(raw json.RawMessage) *models.RecommendationSummary {
	if raw == nil {
		return nil
	}
	var rt recommendationTrendModule
	if err := json.Unmarshal(raw, &rt); err != nil || len(rt.Trend) == 0 {
		return nil
	}
	latest := rt.Trend[0]
	return &models.RecommendationSummary{
		Period:     latest.Period,
		StrongBuy:  latest.StrongBuy,
		Buy:        latest.Buy,
		Hold:       latest.Hold,
		Sell:       latest.Sell,
		StrongSell: latest.StrongSell,
	}
}

func decodeEsg(raw json.RawMessage) *models.EsgScores {
	if raw == nil {
		return nil
	}
	var esg esgScoresModule
	if err := json.Unmarshal(raw, &esg); err != nil {
		return nil
	}
	if esg.TotalEsg.Value == nil && esg.EnvironmentScore.Value == nil &&
		esg.SocialScore.Value == nil && esg.GovernanceScore.Value == nil {
		return nil
	}
	return &models.EsgScores{
		TotalEsg:         esg.TotalEsg.Value,
		EnvironmentScore: esg.EnvironmentScore.Value,
		SocialScore:      esg.SocialScore.Value,
		GovernanceScore:  esg.GovernanceScore.Value,
	}
}
