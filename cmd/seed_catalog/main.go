// seed_catalog genera un script SQL para poblar la tabla products a partir de un
// catálogo XML exportado por el proveedor (codificado en ISO-8859-1).
//
// Uso: go run ./cmd/seed_catalog [ruta/Catalogo.xml] [ruta/salida.sql]
// Por defecto lee Catalogo.xml del directorio actual y escribe
// internal/infrastructure/postgres/migrations/002_seed_catalog.sql
//
// Formato esperado:
//
//	<catalogo>
//	  <producto nombre="Leche" precio="2,50">
//	    <temperatura min="2" max="6"/>
//	  </producto>
//	</catalogo>
package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/logistica-api/internal/domain/entity"
)

type catalogo struct {
	Productos []producto `xml:"producto"`
}

type producto struct {
	Nombre      string `xml:"nombre,attr"`
	Precio      string `xml:"precio,attr"`
	Temperatura struct {
		Min string `xml:"min,attr"`
		Max string `xml:"max,attr"`
	} `xml:"temperatura"`
}

// catalogItem fila lista para insertar.
type catalogItem struct {
	Name      string
	UnitPrice decimal.Decimal
	MinTemp   int
	MaxTemp   int
}

func main() {
	xmlPath := "Catalogo.xml"
	if len(os.Args) > 1 {
		xmlPath = os.Args[1]
	}
	outPath := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "002_seed_catalog.sql")
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	f, err := os.Open(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir XML: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	items, skipped, err := parseCatalog(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar XML: %v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, xmlPath, items); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d productos (%d descartados)\n", outPath, len(items), skipped)
}

// parseCatalog decodifica el XML y descarta filas incompletas o inválidas.
// Nombres repetidos (tras normalizar a NFC) conservan la última aparición.
func parseCatalog(r io.Reader) ([]catalogItem, int, error) {
	var c catalogo
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") || strings.EqualFold(charset, "latin1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&c); err != nil {
		return nil, 0, err
	}

	byName := make(map[string]catalogItem)
	skipped := 0
	for _, p := range c.Productos {
		item, ok := toItem(p)
		if !ok {
			skipped++
			continue
		}
		byName[item.Name] = item
	}

	items := make([]catalogItem, 0, len(byName))
	for _, it := range byName {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, skipped, nil
}

func toItem(p producto) (catalogItem, bool) {
	name := entity.NormalizeProductName(p.Nombre)
	if name == "" {
		return catalogItem{}, false
	}
	price, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(p.Precio), ",", "."))
	if err != nil || price.IsNegative() {
		return catalogItem{}, false
	}
	minT, err := strconv.Atoi(strings.TrimSpace(p.Temperatura.Min))
	if err != nil {
		return catalogItem{}, false
	}
	maxT, err := strconv.Atoi(strings.TrimSpace(p.Temperatura.Max))
	if err != nil || minT > maxT {
		return catalogItem{}, false
	}
	return catalogItem{Name: name, UnitPrice: price, MinTemp: minT, MaxTemp: maxT}, true
}

// writeSQL escribe un único INSERT idempotente: la cantidad nunca se toca, el stock entra por el libro.
func writeSQL(w io.Writer, source string, items []catalogItem) error {
	var b strings.Builder
	b.WriteString("-- Catálogo de productos\n")
	fmt.Fprintf(&b, "-- Generado desde %s\n\n", filepath.Base(source))
	if len(items) == 0 {
		b.WriteString("-- (sin productos)\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	b.WriteString("INSERT INTO products (name, unit_price, min_temperature, max_temperature) VALUES\n")
	for i, it := range items {
		sep := ","
		if i == len(items)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "  ('%s', %s, %d, %d)%s\n", escapeSQL(it.Name), it.UnitPrice.String(), it.MinTemp, it.MaxTemp, sep)
	}
	b.WriteString("ON CONFLICT (name) DO UPDATE SET\n")
	b.WriteString("  unit_price = EXCLUDED.unit_price,\n")
	b.WriteString("  min_temperature = EXCLUDED.min_temperature,\n")
	b.WriteString("  max_temperature = EXCLUDED.max_temperature,\n")
	b.WriteString("  updated_at = now();\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
