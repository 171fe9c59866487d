package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantName string
		wantDB   int
	}{
		{name: "default client name", url: "redis://localhost:6379", wantName: ClientName},
		{name: "url client name wins", url: "redis://localhost:6379/2?client_name=ledger-ops", wantName: "ledger-ops", wantDB: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseOptions(tt.url)
			require.NoError(t, err)
			assert.Equal(t, "localhost:6379", opts.Addr)
			assert.Equal(t, tt.wantName, opts.ClientName)
			assert.Equal(t, tt.wantDB, opts.DB)
		})
	}
}

func TestParseOptionsRejectsBadURL(t *testing.T) {
	_, err := ParseOptions("://bad-url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis url")
}

func TestNewClientConnects(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, ClientName, client.Options().ClientName)
	require.NoError(t, client.Set(context.Background(), "walletledger:ping", "1", 0).Err())
	assert.True(t, mr.Exists("walletledger:ping"))
}

func TestNewClientServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client, err := NewClient(context.Background(), "redis://"+addr)
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), addr)
}
