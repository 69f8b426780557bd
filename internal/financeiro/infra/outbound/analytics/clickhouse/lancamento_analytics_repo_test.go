package clickhouse

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewOptions(t *testing.T) {
	opts := newOptions("localhost:9000", "igreja")

	assert.Equal(t, []string{"localhost:9000"}, opts.Addr)
	assert.Equal(t, "igreja", opts.Auth.Database)
	assert.Equal(t, 60, opts.Settings["max_execution_time"])
}

func TestToTendencia(t *testing.T) {
	mes := time.Date(2025, 2, 1, 0, 0, 0, 0, time.FixedZone("BRT", -3*3600))

	got := toTendencia(mes, decimal.RequireFromString("1500.25"), decimal.RequireFromString("300.05"))

	assert.Equal(t, "2025-02", got.Mes)
	assert.True(t, got.Saldo.Equal(decimal.RequireFromString("1200.20")))
}
