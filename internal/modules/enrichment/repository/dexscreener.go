package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reshetovitsme/tg-watch-relay/internal/modules/enrichment/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
	"golang.org/x/time/rate"
)

type dexPair struct {
	ChainID     string   `json:"chainId"`
	URL         string   `json:"url"`
	PairAddress string   `json:"pairAddress"`
	BaseToken   dexToken `json:"baseToken"`
	PriceUSD    string   `json:"priceUsd"`
	FDV         *float64 `json:"fdv"`
	MarketCap   *float64 `json:"marketCap"`
	Volume      struct {
		H24 *float64 `json:"h24"`
	} `json:"volume"`
	PriceChange struct {
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Info struct {
		Websites []dexWebsite `json:"websites"`
		Socials  []dexSocial  `json:"socials"`
	} `json:"info"`
}

type dexWebsite struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type dexSocial struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type dexToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type dexResponse struct {
	Pairs []dexPair `json:"pairs"`
}

// DexScreener implements MarketData against the public DexScreener API
type DexScreener struct {
	baseURL         string
	client          *http.Client
	limiter         *rate.Limiter
	minLiquidityUSD float64
}

// NewDexScreener creates a client limited to requestsPerMinute calls
func NewDexScreener(baseURL string, requestsPerMinute int, minLiquidityUSD float64) *DexScreener {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 300
	}

	return &DexScreener{
		baseURL:         strings.TrimRight(baseURL, "/"),
		client:          &http.Client{Timeout: 15 * time.Second},
		limiter:         rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
		minLiquidityUSD: minLiquidityUSD,
	}
}

func (d *DexScreener) Lookup(ctx context.Context, address string) (*domain.Quote, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, oops.With("address", address, "context", "rate limiter").Wrap(err)
	}

	endpoint := fmt.Sprintf("%s/latest/dex/tokens/%s", d.baseURL, url.PathEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, oops.With("address", address).Wrap(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "tg-watch-relay/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, oops.With("address", address, "context", "market data request").Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &domain.AbsenceError{Reason: domain.AbsenceReasonNotFound}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, oops.With("address", address, "status", resp.StatusCode).Errorf("market data returned %s", resp.Status)
	}

	var body dexResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, oops.With("address", address, "context", "decoding market data").Wrap(err)
	}

	return d.selectQuote(body.Pairs)
}

func (d *DexScreener) selectQuote(pairs []dexPair) (*domain.Quote, error) {
	if len(pairs) == 0 {
		return nil, &domain.AbsenceError{Reason: domain.AbsenceReasonNotFound}
	}

	token := tokenInfo(pairs[0].BaseToken)

	active := lo.Filter(pairs, func(p dexPair, _ int) bool {
		return p.PriceUSD != ""
	})
	if len(active) == 0 {
		return nil, &domain.AbsenceError{Reason: domain.AbsenceReasonNoActivePairs, Token: &token}
	}

	best := lo.MaxBy(active, func(a, b dexPair) bool {
		return a.Liquidity.USD > b.Liquidity.USD
	})
	if best.Liquidity.USD <= 0 || best.Liquidity.USD < d.minLiquidityUSD {
		token = tokenInfo(best.BaseToken)
		return nil, &domain.AbsenceError{Reason: domain.AbsenceReasonInsufficientLiquidity, Token: &token}
	}

	return toQuote(best), nil
}

func tokenInfo(t dexToken) domain.TokenInfo {
	return domain.TokenInfo{Address: t.Address, Name: t.Name, Symbol: t.Symbol}
}

func toQuote(p dexPair) *domain.Quote {
	marketCap := p.MarketCap
	if marketCap == nil {
		marketCap = p.FDV
	}

	links := lo.Map(p.Info.Websites, func(w dexWebsite, _ int) domain.Link {
		return domain.Link{Label: lo.Ternary(w.Label != "", w.Label, "Website"), URL: w.URL}
	})
	links = append(links, lo.Map(p.Info.Socials, func(s dexSocial, _ int) domain.Link {
		return domain.Link{Label: lo.Capitalize(lo.Ternary(s.Type != "", s.Type, "social")), URL: s.URL}
	})...)

	return &domain.Quote{
		Token:          tokenInfo(p.BaseToken),
		PriceUSD:       p.PriceUSD,
		PriceChange24h: p.PriceChange.H24,
		MarketCap:      marketCap,
		Volume24h:      p.Volume.H24,
		LiquidityUSD:   p.Liquidity.USD,
		PairURL:        p.URL,
		Links: lo.Filter(links, func(l domain.Link, _ int) bool {
			return l.URL != ""
		}),
	}
}
