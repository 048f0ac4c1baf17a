package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/ledger"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const actions = `[
  {"type":"SET_EXCHANGE_RATE","payload":{"rate":"12000"}},
  {"type":"RECEIVE_STOCK","payload":{"location":"WAREHOUSE","productId":"bolt-m8","quantity":"10","unit":"PIECE",
    "product":{"name":"Bolt M8","quantityMode":"DISCRETE","unitPrice":{"amount":"1500","currency":"BASE"}}}},
  {"type":"SELL","payload":{"location":"WAREHOUSE","productId":"bolt-m8","quantity":"4","unit":"PIECE"}}
]`

func TestReplay(t *testing.T) {
	out := filepath.Join(t.TempDir(), "state.json")
	_, err := run(t, "replay", "--actions", writeFile(t, "actions.json", actions), "--out", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	s, err := ledger.Hydrate(data)
	require.NoError(t, err)

	p, ok := s.Product(domain.LocationWarehouse, "bolt-m8")
	require.True(t, ok)
	assert.Equal(t, int64(6), p.Qty)

	summary, err := run(t, "summary", "--state", out)
	require.NoError(t, err)
	assert.Contains(t, summary, "9000 BASE / 0.75 FOREIGN")
}

func TestReplay_StopsAtFirstRejection(t *testing.T) {
	bad := `[
  {"type":"RECEIVE_STOCK","payload":{"location":"WAREHOUSE","productId":"bolt-m8","quantity":"2","unit":"PIECE",
    "product":{"name":"Bolt M8","quantityMode":"DISCRETE","unitPrice":{"amount":"1500","currency":"BASE"}}}},
  {"type":"SELL","payload":{"location":"WAREHOUSE","productId":"bolt-m8","quantity":"5","unit":"PIECE"}}
]`
	_, err := run(t, "replay", "--actions", writeFile(t, "actions.json", bad))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "action 1 (SELL) rejected after 1 applied")
}

func TestReplay_SellerRole(t *testing.T) {
	_, err := run(t, "replay", "--role", "SELLER", "--actions",
		writeFile(t, "actions.json", `[{"type":"SET_EXCHANGE_RATE","payload":{"rate":"12000"}}]`))
	require.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr error
	}{
		{name: "foreign to base", args: []string{"--amount", "10", "--currency", "FOREIGN", "--rate", "12000"}, want: "10 FOREIGN = 120000 BASE\n"},
		{name: "base to foreign", args: []string{"--amount", "30000", "--currency", "BASE", "--rate", "12000"}, want: "30000 BASE = 2.5 FOREIGN\n"},
		{name: "zero rate", args: []string{"--amount", "10", "--rate", "0"}, wantErr: domain.ErrRateUnavailable},
		{name: "bad currency", args: []string{"--amount", "10", "--currency", "EUR", "--rate", "2"}, wantErr: domain.ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"convert"}, tt.args...)...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}
