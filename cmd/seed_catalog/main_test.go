package main

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const catalogXML = `<?xml version="1.0" encoding="ISO-8859-1"?>
<catalogo>
  <producto nombre="Café molido" precio="12,50"><temperatura min="5" max="25"/></producto>
  <producto nombre="Leche" precio="2"><temperatura min="2" max="6"/></producto>
  <producto nombre="Leche" precio="3"><temperatura min="1" max="4"/></producto>
  <producto nombre="" precio="1"><temperatura min="0" max="1"/></producto>
  <producto nombre="Hielo" precio="-1"><temperatura min="-20" max="-5"/></producto>
  <producto nombre="Helado" precio="4"><temperatura min="-5" max="-20"/></producto>
  <producto nombre="Pan d'Or" precio="1.75"><temperatura min="10" max="30"/></producto>
</catalogo>`

func TestParseCatalog_ISO88591(t *testing.T) {
	latin1, err := charmap.ISO8859_1.NewEncoder().String(catalogXML)
	require.NoError(t, err)

	items, skipped, err := parseCatalog(strings.NewReader(latin1))
	require.NoError(t, err)
	assert.Equal(t, 3, skipped)
	require.Len(t, items, 3)

	assert.Equal(t, "Café molido", items[0].Name)
	assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "Leche", items[1].Name)
	assert.True(t, items[1].UnitPrice.Equal(decimal.NewFromInt(3)), "gana la última aparición")
	assert.Equal(t, 1, items[1].MinTemp)
	assert.Equal(t, "Pan d'Or", items[2].Name)
}

func TestWriteSQL(t *testing.T) {
	var b strings.Builder
	err := writeSQL(&b, "/tmp/Catalogo.xml", []catalogItem{
		{Name: "Pan d'Or", UnitPrice: decimal.RequireFromString("1.75"), MinTemp: 10, MaxTemp: 30},
		{Name: "Leche", UnitPrice: decimal.NewFromInt(3), MinTemp: 1, MaxTemp: 4},
	})
	require.NoError(t, err)
	sql := b.String()
	assert.Contains(t, sql, "-- Generado desde Catalogo.xml")
	assert.Contains(t, sql, "('Pan d''Or', 1.75, 10, 30),\n")
	assert.Contains(t, sql, "('Leche', 3, 1, 4)\n")
	assert.Contains(t, sql, "ON CONFLICT (name) DO UPDATE SET")
	assert.NotContains(t, sql, "quantity")

	b.Reset()
	require.NoError(t, writeSQL(&b, "vacio.xml", nil))
	assert.NotContains(t, b.String(), "INSERT")
}
