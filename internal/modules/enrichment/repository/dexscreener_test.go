package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/reshetovitsme/tg-watch-relay/internal/modules/enrichment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const address = "EKpQGSJtjMFqKZ9KQanSqYXRcF8fBopzL7qrN5L3n3g"

func newServer(t *testing.T, status int, body string) *DexScreener {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/dex/tokens/"+address, r.URL.Path)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return NewDexScreener(srv.URL, 6000, 1000)
}

func TestDexScreenerLookup(t *testing.T) {
	t.Run("picks most liquid pair", func(t *testing.T) {
		client := newServer(t, http.StatusOK, `{"pairs":[
			{"url":"https://dexscreener.com/solana/small","baseToken":{"address":"`+address+`","name":"dogwifhat","symbol":"WIF"},"priceUsd":"1.70","liquidity":{"usd":5000}},
			{"url":"https://dexscreener.com/solana/big","baseToken":{"address":"`+address+`","name":"dogwifhat","symbol":"WIF"},"priceUsd":"1.75","fdv":1748017320,"volume":{"h24":50123456},"priceChange":{"h24":-5.7},"liquidity":{"usd":900000},
			 "info":{"websites":[{"label":"","url":"https://wif.example"}],"socials":[{"type":"twitter","url":"https://x.com/wif"}]}}
		]}`)

		quote, err := client.Lookup(context.Background(), address)
		require.NoError(t, err)

		assert.Equal(t, "WIF", quote.Token.Symbol)
		assert.Equal(t, "1.75", quote.PriceUSD)
		assert.Equal(t, "https://dexscreener.com/solana/big", quote.PairURL)
		assert.InDelta(t, -5.7, quote.PriceChange24h, 0.0001)
		require.NotNil(t, quote.MarketCap)
		assert.InDelta(t, 1748017320, *quote.MarketCap, 0.5)
		assert.Equal(t, []domain.Link{
			{Label: "Website", URL: "https://wif.example"},
			{Label: "Twitter", URL: "https://x.com/wif"},
		}, quote.Links)
	})

	t.Run("not found status", func(t *testing.T) {
		client := newServer(t, http.StatusNotFound, `{}`)

		_, err := client.Lookup(context.Background(), address)
		var absence *domain.AbsenceError
		require.ErrorAs(t, err, &absence)
		assert.Equal(t, domain.AbsenceReasonNotFound, absence.Reason)
		assert.Nil(t, absence.Token)
	})

	t.Run("empty pairs", func(t *testing.T) {
		client := newServer(t, http.StatusOK, `{"pairs":null}`)

		_, err := client.Lookup(context.Background(), address)
		var absence *domain.AbsenceError
		require.ErrorAs(t, err, &absence)
		assert.Equal(t, domain.AbsenceReasonNotFound, absence.Reason)
	})

	t.Run("no priced pairs", func(t *testing.T) {
		client := newServer(t, http.StatusOK, `{"pairs":[{"baseToken":{"address":"`+address+`","name":"Ghost","symbol":"GST"}}]}`)

		_, err := client.Lookup(context.Background(), address)
		var absence *domain.AbsenceError
		require.ErrorAs(t, err, &absence)
		assert.Equal(t, domain.AbsenceReasonNoActivePairs, absence.Reason)
		require.NotNil(t, absence.Token)
		assert.Equal(t, "GST", absence.Token.Symbol)
	})

	t.Run("liquidity below floor", func(t *testing.T) {
		client := newServer(t, http.StatusOK, `{"pairs":[{"baseToken":{"address":"`+address+`","name":"Thin","symbol":"THN"},"priceUsd":"0.001","liquidity":{"usd":10}}]}`)

		_, err := client.Lookup(context.Background(), address)
		var absence *domain.AbsenceError
		require.ErrorAs(t, err, &absence)
		assert.Equal(t, domain.AbsenceReasonInsufficientLiquidity, absence.Reason)
		require.NotNil(t, absence.Token)
		assert.Equal(t, "Thin", absence.Token.Name)
	})

	t.Run("server error", func(t *testing.T) {
		client := newServer(t, http.StatusBadGateway, `oops`)

		_, err := client.Lookup(context.Background(), address)
		require.Error(t, err)
		var absence *domain.AbsenceError
		assert.NotErrorAs(t, err, &absence)
	})
}
