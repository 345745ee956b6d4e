package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recibo/internal/common"
	"recibo/internal/model"
	"recibo/internal/rules"
)

type mockFetcher struct {
	html string
	err  error

	calls int
}

func (m *mockFetcher) Fetch(_ context.Context, _ string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.html, nil
}

const scanPage = `<html><body>
<div class="txtTopo">MERCADO DO BAIRRO</div>
<table id="tabResult">
<tr><td><span class="txtTit">CERVEJA SKOL 350ML</span>
<span class="Rqtd">Qtde.:6</span>
<span class="valor">3,99</span></td></tr>
<tr><td><span class="txtTit">TEMPERO EXOTICO</span>
<span class="Rqtd">Qtde.:1</span>
<span class="valor">7,50</span></td></tr>
</table>
<div class="txtMax">31,44</div>
<div class="infNFe">Emissão: 02/05/2024</div>
</body></html>`

func TestScanURLIngestsAndClassifies(t *testing.T) {
	store := &mockStorage{}
	fetcher := &mockFetcher{html: scanPage}
	resolver := NewResolver(store, nil, nil)
	ingestor := NewIngestor(store, fetcher, resolver, nil)

	receipt, cached, err := ingestor.ScanURL(context.Background(), "https://sefaz.example/qr?p=abc", "rs")
	require.NoError(t, err)
	assert.False(t, cached)

	assert.Equal(t, "MERCADO DO BAIRRO", receipt.Merchant)
	assert.Equal(t, 31.44, receipt.Total)
	require.NotNil(t, receipt.IssuedAt)
	assert.Equal(t, "2024-05-02", receipt.IssuedAt.Format("2006-01-02"))

	require.Len(t, receipt.Items, 2)
	assert.Equal(t, "Bebidas", receipt.Items[0].Category)
	assert.Equal(t, 6.0, receipt.Items[0].Quantity)
	assert.Equal(t, rules.FallbackFood, receipt.Items[1].Category)
}

func TestScanURLShortCircuitsKnownURL(t *testing.T) {
	known := &model.Receipt{ID: 42, Merchant: "MERCADO DO BAIRRO", OriginURL: "https://sefaz.example/qr?p=abc"}
	store := &mockStorage{
		getReceiptByURLFn: func(_ context.Context, _ string) (*model.Receipt, error) {
			return known, nil
		},
	}
	fetcher := &mockFetcher{html: scanPage}
	ingestor := NewIngestor(store, fetcher, NewResolver(store, nil, nil), nil)

	receipt, cached, err := ingestor.ScanURL(context.Background(), known.OriginURL, "")
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, int64(42), receipt.ID)
	assert.Zero(t, fetcher.calls, "cached URLs must not be fetched")
}

func TestScanURLFetchErrorIsFatal(t *testing.T) {
	store := &mockStorage{}
	fetcher := &mockFetcher{err: errors.New("connection refused")}
	ingestor := NewIngestor(store, fetcher, NewResolver(store, nil, nil), nil)

	_, _, err := ingestor.ScanURL(context.Background(), "https://sefaz.example/qr?p=abc", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrFetchFailed)
}

func TestScanURLEmptyReceipt(t *testing.T) {
	store := &mockStorage{}
	fetcher := &mockFetcher{html: "<html><body><p>nada aqui</p></body></html>"}
	ingestor := NewIngestor(store, fetcher, NewResolver(store, nil, nil), nil)

	_, _, err := ingestor.ScanURL(context.Background(), "https://sefaz.example/qr?p=abc", "")
	assert.ErrorIs(t, err, common.ErrEmptyReceipt)
}

func TestScanURLEmptyURL(t *testing.T) {
	store := &mockStorage{}
	ingestor := NewIngestor(store, &mockFetcher{}, NewResolver(store, nil, nil), nil)

	_, _, err := ingestor.ScanURL(context.Background(), "", "")
	require.Error(t, err)
}
