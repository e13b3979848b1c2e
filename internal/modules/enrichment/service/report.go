package service

import (
	"fmt"
	"html"
	"strings"

	"github.com/reshetovitsme/tg-watch-relay/internal/modules/enrichment/domain"
	"github.com/samber/lo"
)

const (
	placeholderText  = "🔎 <i>Analyzing token</i> <code>%s</code>..."
	defaultFailure   = "Market data is unavailable right now."
	securitySection  = "🛡️ <b><u>Security:</u></b>\n<i>Security data unavailable for this token.</i>"
	noMarketFallback = "This token currently has no active or sufficient liquidity on tracked exchanges."
)

// FormatLargeNumber abbreviates n with two decimals: below 1,000 as is, then
// K, M and B.
func FormatLargeNumber(n float64) string {
	switch {
	case n < 1_000:
		return fmt.Sprintf("%.2f", n)
	case n < 1_000_000:
		return fmt.Sprintf("%.2fK", n/1_000)
	case n < 1_000_000_000:
		return fmt.Sprintf("%.2fM", n/1_000_000)
	default:
		return fmt.Sprintf("%.2fB", n/1_000_000_000)
	}
}

// FormatReport renders the full analysis of a quote.
func FormatReport(quote *domain.Quote, identifier string) string {
	var b strings.Builder
	b.WriteString(header(quote.Token, identifier))

	if quote.PriceUSD != "" {
		glyph := lo.Ternary(quote.PriceChange24h >= 0, "📈", "📉")
		fmt.Fprintf(&b, "\n\n<b>Price:</b> <code>$%s</code> (%s %.2f%%)",
			html.EscapeString(quote.PriceUSD), glyph, quote.PriceChange24h)
	}

	if quote.MarketCap != nil || quote.Volume24h != nil {
		b.WriteString("\n\n📊 <b><u>Market Stats:</u></b>")
		if quote.MarketCap != nil {
			fmt.Fprintf(&b, "\n<b>Market Cap:</b> <code>$%s</code>", FormatLargeNumber(*quote.MarketCap))
		}
		if quote.Volume24h != nil {
			fmt.Fprintf(&b, "\n<b>24h Volume:</b> <code>$%s</code>", FormatLargeNumber(*quote.Volume24h))
		}
	}

	links := []domain.Link{}
	if quote.PairURL != "" {
		links = append(links, domain.Link{Label: "DexScreener", URL: quote.PairURL})
	}
	links = append(links, addressLinks(tokenAddress(quote.Token, identifier))...)
	links = append(links, quote.Links...)

	b.WriteString("\n\n🔗 <b><u>Links:</u></b>\n")
	b.WriteString(renderLinks(links))
	b.WriteString("\n\n")
	b.WriteString(securitySection)
	return b.String()
}

// FormatLite renders a report for a token that is known but has no usable market.
func FormatLite(absence *domain.AbsenceError, identifier string) string {
	token := lo.FromPtr(absence.Token)
	reason := lo.Ternary(absence.Reason == "", noMarketFallback, absence.Error())

	var b strings.Builder
	b.WriteString(header(token, identifier))
	b.WriteString("\n\n⚠️ <b>No Market Data Found:</b>\n<i>")
	b.WriteString(html.EscapeString(reason))
	b.WriteString("</i>\n\n🔗 <b><u>Associated Links:</u></b>\n")
	b.WriteString(renderLinks(addressLinks(tokenAddress(token, identifier))))
	b.WriteString("\n\n")
	b.WriteString(securitySection)
	return b.String()
}

// FormatFailure renders the notice that replaces a placeholder when no report
// could be produced.
func FormatFailure(message string) string {
	message = lo.Ternary(message == "", defaultFailure, message)
	return fmt.Sprintf("⚠️ <b>Analysis Failed:</b>\n<i>%s</i>", html.EscapeString(message))
}

func formatPlaceholder(identifier string) string {
	return fmt.Sprintf(placeholderText, html.EscapeString(identifier))
}

func header(token domain.TokenInfo, identifier string) string {
	name := lo.Ternary(token.Name != "", token.Name, "Unknown token")
	symbol := lo.Ternary(token.Symbol != "", token.Symbol, shortAddress(tokenAddress(token, identifier)))
	return fmt.Sprintf("<b>%s</b> (<code>$%s</code>)", html.EscapeString(name), html.EscapeString(symbol))
}

func tokenAddress(token domain.TokenInfo, identifier string) string {
	return lo.Ternary(token.Address != "", token.Address, identifier)
}

func addressLinks(address string) []domain.Link {
	if address == "" {
		return nil
	}
	return []domain.Link{
		{Label: "Solscan", URL: "https://solscan.io/token/" + address},
		{Label: "RugCheck", URL: "https://rugcheck.xyz/tokens/" + address},
	}
}

func renderLinks(links []domain.Link) string {
	if len(links) == 0 {
		return "<i>No links available.</i>"
	}
	rendered := lo.Map(links, func(l domain.Link, _ int) string {
		return fmt.Sprintf("<a href='%s'>%s</a>", html.EscapeString(l.URL), html.EscapeString(l.Label))
	})
	return strings.Join(rendered, " | ")
}

func shortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:4] + "…" + address[len(address)-4:]
}
