package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/logistics"
)

func TestNewTrade_CopiaInstantanea(t *testing.T) {
	p := &entity.Product{
		Name:           "Assignment 6",
		UnitPrice:      decimal.RequireFromString("1.25"),
		MinTemperature: 10,
		MaxTemperature: 30,
		Quantity:       95,
	}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tr := entity.NewTrade("t-1", "customer", "owner", p.Snapshot(), 4, now)

	assert.Equal(t, "Assignment 6", tr.ProductName)
	assert.True(t, decimal.NewFromInt(5).Equal(tr.Price), "1.25 × 4 = 5")
	assert.Equal(t, 10, tr.MinTemperature)
	assert.Equal(t, 30, tr.MaxTemperature)
	assert.Equal(t, logistics.StateCreated, tr.TransportState)
	assert.Equal(t, now, tr.CreatedAt)

	// Cambios posteriores del producto no afectan al trato
	p.MinTemperature = -5
	assert.Equal(t, 10, tr.MinTemperature)
}

func TestProduct_CanReserve(t *testing.T) {
	p := &entity.Product{Quantity: 10}
	assert.True(t, p.CanReserve(10))
	assert.False(t, p.CanReserve(11))
	assert.False(t, p.CanReserve(0))
	assert.False(t, p.CanReserve(-1))
}

func TestNormalizeProductName(t *testing.T) {
	// "é" compuesta vs "e" + acento combinante
	composed := "Café"
	decomposed := "Cafe\u0301"
	assert.Equal(t, entity.NormalizeProductName(composed), entity.NormalizeProductName("  "+decomposed+" "))
}
