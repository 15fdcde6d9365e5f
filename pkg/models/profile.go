package models

// Profile is the sealed variant over company and fund profiles. Exactly one
// of CompanyProfile or FundProfile implements it per symbol.
type Profile interface {
	// Name returns the display name of the security.
	Name() string
	// ISIN returns the resolved ISIN, or "" when unknown.
	ISIN() string

	isProfile()
}

// Address is the registered address from the asset profile module.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country,omitempty"`
}

// CompanyProfile describes an operating company (quoteType EQUITY).
type CompanyProfile struct {
	CompanyName string  `json:"name"`
	Sector      string  `json:"sector,omitempty"`
	Industry    string  `json:"industry,omitempty"`
	Website     string  `json:"website,omitempty"`
	Address     Address `json:"address,omitempty"`
	Summary     string  `json:"summary,omitempty"`
	Isin        string  `json:"isin,omitempty"`
}

func (p *CompanyProfile) Name() string { return p.CompanyName }
func (p *CompanyProfile) ISIN() string { return p.Isin }
func (p *CompanyProfile) isProfile()   {}

// FundKind categorizes fund profiles.
type FundKind string

const (
	FundKindETF    FundKind = "ETF"
	FundKindMutual FundKind = "MUTUALFUND"
)

// FundProfile describes a fund or ETF (quoteType ETF/MUTUALFUND).
type FundProfile struct {
	FundName string   `json:"name"`
	Family   string   `json:"family,omitempty"`
	Kind     FundKind `json:"kind"`
	Isin     string   `json:"isin,omitempty"`
}

func (p *FundProfile) Name() string { return p.FundName }
func (p *FundProfile) ISIN() string { return p.Isin }
func (p *FundProfile) isProfile()   {}
