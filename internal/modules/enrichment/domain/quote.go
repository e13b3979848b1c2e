package domain

import "fmt"

// TokenInfo is the identity part of a token, available even when it has no market.
type TokenInfo struct {
	Address string
	Name    string
	Symbol  string
}

// Link is a labelled URL shown in a report.
type Link struct {
	Label string
	URL   string
}

// Quote is the market snapshot of a token's most liquid pair.
type Quote struct {
	Token TokenInfo
	// PriceUSD keeps the upstream decimal string; empty means unknown.
	PriceUSD       string
	PriceChange24h float64
	MarketCap      *float64
	Volume24h      *float64
	LiquidityUSD   float64
	PairURL        string
	Links          []Link
}

// AbsenceError is returned by a market-data lookup that found no usable quote.
// Token is set when the upstream still knew who the token was.
type AbsenceError struct {
	Reason AbsenceReason
	Token  *TokenInfo
}

func (e *AbsenceError) Error() string {
	switch e.Reason {
	case AbsenceReasonNoActivePairs:
		return "token has no active trading pairs"
	case AbsenceReasonInsufficientLiquidity:
		return "token has pairs, but none have sufficient liquidity"
	case AbsenceReasonNotFound:
		return "token not found"
	default:
		return fmt.Sprintf("no market data: %s", e.Reason)
	}
}
