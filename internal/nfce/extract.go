// Package nfce extracts structured purchase data from Brazilian NFC-e
// receipt pages. Each state SEFAZ renders a different layout, so the
// parser tries issuer-specific selectors first and falls back to generic
// heuristics. Extraction never fails on malformed markup: every field
// degrades independently to a safe default.
package nfce

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// UnknownMerchant is the sentinel returned when no merchant name can be
// located on the page.
const UnknownMerchant = "Não identificado"

// Item is one product row parsed from the page.
type Item struct {
	Name  string
	Qty   float64
	Value float64
}

// ReceiptData is the extractor's output. Address and IssueDate are empty
// when the page carries no recognizable value; IssueDate is ISO formatted
// (YYYY-MM-DD).
type ReceiptData struct {
	Merchant  string
	Address   string
	IssueDate string
	Items     []Item
	Total     float64
}

var (
	merchantFallbacks = []string{".txtTopo", "#u20", ".emit", ".razao", "[class*='emitente']"}
	totalFallbacks    = []string{".txtMax", ".totalNumb", ".total", "[class*='total']", "#totalNota"}
	addressSelectors  = []string{"[class*='endereco']", "[class*='address']", ".txtTit + div", ".inf-adic", "li", "div"}
	dateSelectors     = []string{"[class*='data']", "[class*='emissao']", ".infNFe", "#infNFe", "li", "td", "span"}

	streetTokenRe = regexp.MustCompile(`(?i)(Rua|R\.|Av\.|Avenida|Travessa)`)
	streetLineRe  = regexp.MustCompile(`(?i)((?:Rua|R\.|Av\.|Avenida)\s+[^\n]{10,80})`)
	dateRe        = regexp.MustCompile(`(\d{2})[/.-](\d{2})[/.-](\d{2,4})`)
	headerLabels  = map[string]bool{"ITEM": true, "PRODUTO": true, "DESCRIÇÃO": true}
)

// Parse extracts receipt data from an NFC-e page using the given issuer's
// layout, falling back to generic heuristics field by field.
func Parse(html string, issuer Issuer) (*ReceiptData, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	layout := layoutFor(issuer)

	data := &ReceiptData{
		Merchant:  extractMerchant(doc, layout),
		Address:   extractAddress(doc),
		Total:     extractTotal(doc, layout),
		IssueDate: extractIssueDate(doc),
		Items:     extractItems(doc, layout),
	}

	// Issuer layouts drift; when the specific selectors come up empty the
	// generic table scan still has a chance.
	if len(data.Items) == 0 && issuer != IssuerGeneric {
		data.Items = scanTables(doc)
	}

	return data, nil
}

func extractMerchant(doc *goquery.Document, layout Layout) string {
	if layout.Merchant != "" {
		if text := CleanText(doc.Find(layout.Merchant).First().Text()); text != "" {
			return text
		}
	}
	for _, sel := range merchantFallbacks {
		if text := CleanText(doc.Find(sel).First().Text()); utf8.RuneCountInString(text) > 3 {
			return text
		}
	}
	return UnknownMerchant
}

func extractTotal(doc *goquery.Document, layout Layout) float64 {
	if layout.Total != "" {
		if sel := doc.Find(layout.Total).First(); sel.Length() > 0 {
			if v := ParseMoney(sel.Text()); v > 0 {
				return v
			}
		}
	}
	for _, sel := range totalFallbacks {
		if v := ParseMoney(doc.Find(sel).First().Text()); v > 0 {
			return v
		}
	}
	return 0
}

func extractAddress(doc *goquery.Document) string {
	address := ""
	for _, sel := range addressSelectors {
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := s.Text()
			if !streetTokenRe.MatchString(text) {
				return true
			}
			cleaned := CleanText(text)
			if n := utf8.RuneCountInString(cleaned); n > 10 && n < 200 {
				address = cleaned
				return false
			}
			return true
		})
		if address != "" {
			return address
		}
	}

	if m := streetLineRe.FindStringSubmatch(doc.Text()); m != nil {
		return CleanText(m[1])
	}
	return ""
}

func extractIssueDate(doc *goquery.Document) string {
	for _, sel := range dateSelectors {
		date := ""
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if iso := firstValidDate(s.Text()); iso != "" {
				date = iso
				return false
			}
			return true
		})
		if date != "" {
			return date
		}
	}
	return firstValidDate(doc.Text())
}

// firstValidDate scans text for dd/mm/yyyy-family patterns and returns the
// first candidate that is a real calendar date, in ISO form. Two-digit
// years pivot at 50.
func firstValidDate(text string) string {
	for _, m := range dateRe.FindAllStringSubmatch(text, -1) {
		day := atoi(m[1])
		month := atoi(m[2])
		year := atoi(m[3])
		if len(m[3]) == 2 {
			if year < 50 {
				year += 2000
			} else {
				year += 1900
			}
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Year() != year || int(t.Month()) != month || t.Day() != day {
			continue
		}
		return t.Format("2006-01-02")
	}
	return ""
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

func extractItems(doc *goquery.Document, layout Layout) []Item {
	if layout.ItemRows == "" {
		return scanTables(doc)
	}

	var items []Item
	doc.Find(layout.ItemRows).Each(func(_ int, row *goquery.Selection) {
		item, ok := itemFromRow(row, layout)
		if ok && IsValidItemName(item.Name) {
			items = append(items, item)
		}
	})
	return items
}

func itemFromRow(row *goquery.Selection, layout Layout) (Item, bool) {
	name := ""
	if layout.ItemName != "" {
		name = CleanText(row.Find(layout.ItemName).First().Text())
	}
	if name == "" {
		name = CleanText(row.Find("td, span").First().Text())
	}
	if utf8.RuneCountInString(name) < 2 {
		return Item{}, false
	}

	qty := 1.0
	if layout.ItemQty != "" {
		if sel := row.Find(layout.ItemQty).First(); sel.Length() > 0 {
			qty = ParseNumber(sel.Text())
		}
	}
	if qty <= 0 {
		qty = 1.0
	}

	value := 0.0
	if layout.ItemValue != "" {
		value = ParseMoney(row.Find(layout.ItemValue).First().Text())
	}
	if value == 0 {
		value = FindMoney(row.Text())
	}

	return Item{Name: name, Qty: qty, Value: value}, true
}

// scanTables is the generic fallback: every table row with at least two
// cells is a candidate item, first cell the name, remaining cells scanned
// for a money token (value) or a small positive number (quantity).
func scanTables(doc *goquery.Document) []Item {
	var items []Item
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() < 2 {
				return
			}

			name := CleanText(cells.First().Text())
			if utf8.RuneCountInString(name) < 3 || headerLabels[strings.ToUpper(name)] {
				return
			}

			value := 0.0
			qty := 1.0
			cells.Slice(1, cells.Length()).Each(func(_ int, cell *goquery.Selection) {
				text := cell.Text()
				if money := ParseMoney(text); money > 0 {
					value = money
				} else if num := ParseNumber(text); num > 0 && num < 1000 {
					qty = num
				}
			})

			if value > 0 && IsValidItemName(name) {
				items = append(items, Item{Name: name, Qty: qty, Value: value})
			}
		})
	})
	return items
}
