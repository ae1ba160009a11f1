package models

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var hundred = decimal.NewFromInt(100)

// Derive recalcula finalPrice y, si el nombre cambió respecto a la versión
// persistida (o es un alta, previousName == nil), regenera el slug.
// Es una función pura sobre el estado actual del producto.
func Derive(p *Product, previousName *string) {
	p.FinalPrice = FinalPrice(p.Price, p.Discount)
	if previousName == nil || *previousName != p.Name || p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
}

// FinalPrice aplica el descuento porcentual al precio.
func FinalPrice(price, discount float64) float64 {
	if discount <= 0 {
		return price
	}
	pr := decimal.NewFromFloat(price)
	off := pr.Mul(decimal.NewFromFloat(discount)).Div(hundred)
	return pr.Sub(off).InexactFloat64()
}

func percentOff(compare, price float64) float64 {
	c := decimal.NewFromFloat(compare)
	diff := c.Sub(decimal.NewFromFloat(price))
	return diff.Div(c).Mul(hundred).Round(0).InexactFloat64()
}

// Slugify translitera el nombre a un identificador URL en minúsculas:
// se quitan los acentos y apóstrofes, y cada tramo no alfanumérico se
// colapsa en un único guion sin guiones al inicio ni al final.
func Slugify(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r == '\'' || r == '’' || r == '‘':
			continue
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}

// ApplyStockStatusGuard acopla status al paso por cero del stock:
// stock 0 → out_of_stock; reposición desde out_of_stock → active.
// Los demás estados solo los cambian actores externos.
func ApplyStockStatusGuard(p *Product) {
	if p.Stock == 0 {
		p.Status = StatusOutOfStock
		return
	}
	if p.Status == StatusOutOfStock {
		p.Status = StatusActive
	}
}

// StockDirection sentido de un ajuste de inventario
type StockDirection string

const (
	StockDecrease StockDirection = "decrease"
	StockIncrease StockDirection = "increase"
)

// AdjustStock aplica el ajuste sobre los contadores y luego el guard de estado.
// La validación de cantidad y disponibilidad corresponde al llamador.
func (p *Product) AdjustStock(quantity int, direction StockDirection) {
	switch direction {
	case StockDecrease:
		p.Stock -= quantity
		p.Sales += int64(quantity)
	case StockIncrease:
		p.Stock += quantity
	}
	ApplyStockStatusGuard(p)
}
