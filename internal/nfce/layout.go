package nfce

import "strings"

// Issuer identifies which state SEFAZ rendered the receipt page. Each
// issuer uses a different HTML layout; Generic means "unknown, use the
// table-scan heuristics only".
type Issuer int

const (
	IssuerGeneric Issuer = iota
	IssuerRS
	IssuerSP
	IssuerRJ
)

// String returns the issuer's state code.
func (i Issuer) String() string {
	switch i {
	case IssuerRS:
		return "RS"
	case IssuerSP:
		return "SP"
	case IssuerRJ:
		return "RJ"
	default:
		return "GENERIC"
	}
}

// ParseIssuer maps a state code to an Issuer, defaulting to generic.
func ParseIssuer(code string) Issuer {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "RS":
		return IssuerRS
	case "SP":
		return IssuerSP
	case "RJ":
		return IssuerRJ
	default:
		return IssuerGeneric
	}
}

// Layout holds the CSS selectors needed to locate receipt fields in one
// issuer's page. Empty selectors mean "no issuer-specific path, rely on
// the fallback heuristics".
type Layout struct {
	Merchant  string
	Total     string
	ItemRows  string
	ItemName  string
	ItemQty   string
	ItemValue string
}

var layouts = map[Issuer]Layout{
	IssuerRS: {
		Merchant:  ".txtTopo",
		Total:     ".txtMax",
		ItemRows:  "#tabResult tr",
		ItemName:  ".txtTit",
		ItemQty:   ".Rqtd",
		ItemValue: ".valor",
	},
	IssuerSP: {
		Merchant:  "#u20",
		Total:     ".totalNumb",
		ItemRows:  "#tabResult tbody tr",
		ItemName:  ".txtTit",
		ItemQty:   ".RqtdBox",
		ItemValue: ".RvlUnit",
	},
	IssuerRJ: {
		Merchant:  ".txtTopo",
		Total:     ".linhaShade .txtMax",
		ItemRows:  "table.toggable tr",
		ItemName:  ".txtTit",
		ItemQty:   ".Rqtd",
		ItemValue: ".valor",
	},
}

func layoutFor(issuer Issuer) Layout {
	return layouts[issuer]
}
