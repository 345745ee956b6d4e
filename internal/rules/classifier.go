// Package rules classifies free-text product names into spending
// categories with a two-tier keyword matcher. Strong keywords are
// unambiguous and win outright; weak keywords only nominate a candidate,
// which a unit-of-measure tie-break may still overturn (a fruit name on a
// 200ML package is a drink or a yogurt, not produce).
package rules

import (
	"regexp"
	"strings"
)

// Classifier fallback sentinels. The resolver treats both as "rules were
// not decisive".
const (
	FallbackFood  = "Alimentação"
	Uncategorized = "Outros"
)

type keywordSet struct {
	category string
	keywords []string
}

// Strong modifiers: the presence of any of these settles the category
// regardless of other tokens in the name. Order matters — earlier sets
// shadow later ones ("agua sanitaria" must hit Limpeza before "agua"
// hits Bebidas).
var strongSets = []keywordSet{
	{"Limpeza", []string{
		"sabao", "detergente", "lava loucas", "lava roupa", "amaciante", "alvejante",
		"desinfetante", "agua sanitaria", "cloro",
		"papel higienico", "papel toalha", "guardanapo",
		"saco de lixo", "lixo", "vassoura", "rodo", "mop",
		"esponja", "bombril", "palha de aco",
		"veja", "omo", "ype", "comfort", "downy",
	}},
	{"Higiene", []string{
		"sabonete", "shampoo", "condicionador",
		"pasta dental", "creme dental", "colgate", "oral-b",
		"escova dental", "fio dental",
		"desodorante", "perfume", "colonia",
		"absorvente", "fralda", "pampers", "huggies",
		"gilete", "barbeador", "lamina",
	}},
	{"Pet", []string{
		"racao", "petisco", "antipulgas",
		"pedigree", "whiskas", "royal canin",
	}},
	{"Farmácia", []string{
		"remedio", "medicamento", "dipirona", "paracetamol", "ibuprofeno",
		"vitamina", "suplemento", "band-aid", "curativo", "algodao",
		"termometro", "seringa",
	}},
	{"Bebidas", []string{
		"cerveja", "chopp", "brahma", "skol", "heineken", "budweiser",
		"vinho", "vodka", "whisky", "whiskey", "rum", "gin", "cachaça", "cachaca",
		"refri", "coca-cola", "coca cola", "pepsi", "fanta", "guarana",
		"suco", "nectar", "agua", "h2oh", "sprite", "schweppes",
		"energetico", "monster", "redbull", "red bull", "gatorade",
		"clight", "tang",
	}},
	{"Padaria", []string{
		"pao", "paes", "baguete", "ciabatta", "frances",
		"bolo", "torta", "pudim", "sonho", "croissant",
		"biscoito", "bolacha", "wafer", "rosquinha",
	}},
	{"Transporte", []string{
		"gasolina", "etanol", "diesel", "gnv", "combustivel",
		"estacionamento", "pedagio",
	}},
}

// Weak candidates: context-dependent tokens. The first match only
// nominates; the unit tie-break may reassign it.
var weakSets = []keywordSet{
	{"Açougue", []string{
		"carne", "bife", "contra file", "file mignon", "maminha",
		"picanha", "alcatra", "patinho", "acem", "costela",
		"frango", "coxa", "sobrecoxa", "asa",
		"linguica", "salsicha", "bacon", "presunto", "mortadela",
		"peixe", "salmao", "tilapia", "bacalhau", "camarao",
	}},
	{"Hortifruti", []string{
		"banana", "maca", "laranja", "limao", "uva", "morango",
		"manga", "mamao", "melancia", "melao", "abacaxi", "kiwi",
		"tomate", "cebola", "alho", "batata", "cenoura", "beterraba",
		"alface", "rucula", "agriao", "couve", "brocolis", "espinafre",
		"pepino", "abobrinha", "pimentao", "berinjela",
	}},
	{"Laticínios", []string{
		"leite", "iogurte", "queijo", "mussarela", "requeijao",
		"manteiga", "margarina", "nata",
		"danone", "activia", "italac", "parmalat",
	}},
	{"Mercearia", []string{
		"arroz", "feijao", "macarrao", "massa", "espaguete",
		"oleo", "soja", "azeite", "vinagre",
		"sal", "acucar", "farinha", "trigo", "fuba", "amido",
		"cafe", "cha", "achocolatado", "nescau", "toddy",
		"molho", "catchup", "ketchup", "mostarda", "maionese",
		"atum", "sardinha", "milho", "ervilha", "palmito",
	}},
	{"Congelados", []string{
		"pizza", "lasanha", "hamburguer", "nuggets", "empanado",
		"sorvete", "picole", "acai",
	}},
	{"Casa", []string{
		"pilha", "lampada", "vela", "fosforo", "isqueiro",
		"panela", "copo descartavel", "papel aluminio", "filme pvc",
	}},
	{"Vestuário", []string{
		"camiseta", "blusa", "calca", "bermuda", "meia", "cueca", "calcinha",
	}},
	{"Eletrônicos", []string{
		"fone", "carregador", "cabo usb", "pendrive", "mouse", "teclado",
	}},
}

// unitRe captures a number immediately followed by a unit token, the way
// receipts print package sizes ("IOGURTE 200ML", "ARROZ 5KG").
var unitRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(ml|l|lt|litros?|g|gr|gramas?|kg)\b`)

var dairyTokens = []string{"iogurte", "leite", "bebida"}

// Classify maps an item name to a category name. It never fails: unmatched
// names fall back to FallbackFood, empty input to Uncategorized.
func Classify(name string) string {
	if strings.TrimSpace(name) == "" {
		return Uncategorized
	}
	lower := strings.ToLower(name)

	for _, set := range strongSets {
		for _, kw := range set.keywords {
			if strings.Contains(lower, kw) {
				return set.category
			}
		}
	}

	candidate := FallbackFood
	for _, set := range weakSets {
		if candidate != FallbackFood {
			break
		}
		for _, kw := range set.keywords {
			if strings.Contains(lower, kw) {
				candidate = set.category
				break
			}
		}
	}

	return applyUnitTieBreak(lower, candidate)
}

// applyUnitTieBreak reassigns produce/meat candidates sold in liquid
// units: those are drinks, unless the name itself says dairy.
func applyUnitTieBreak(lower, candidate string) string {
	if candidate != "Hortifruti" && candidate != "Açougue" {
		return candidate
	}
	unit := extractUnit(lower)
	if unit != "ML" && unit != "L" {
		return candidate
	}
	for _, token := range dairyTokens {
		if strings.Contains(lower, token) {
			return "Laticínios"
		}
	}
	return "Bebidas"
}

// extractUnit returns the normalized unit of measure encoded in the name,
// or "" when none is present. lt/litro normalize to L, gr/gramas to G.
func extractUnit(lower string) string {
	m := unitRe.FindStringSubmatch(lower)
	if m == nil {
		return ""
	}
	switch m[2] {
	case "ml":
		return "ML"
	case "l", "lt", "litro", "litros":
		return "L"
	case "g", "gr", "grama", "gramas":
		return "G"
	case "kg":
		return "KG"
	default:
		return ""
	}
}
