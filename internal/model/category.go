package model

import "time"

// Category is a spending category line items are assigned to. A default
// set is seeded at migration time; users may add more.
type Category struct {
	CreatedAt time.Time
	Name      string
	Icon      string
	Color     string
	ID        int
}

// DefaultCategories is the seed set, matching what the mobile client
// expects. Alimentação and Outros double as classifier fallbacks.
var DefaultCategories = []Category{
	{Name: "Bebidas", Icon: "🥤", Color: "#4ECDC4"},
	{Name: "Transporte", Icon: "🚗", Color: "#45B7D1"},
	{Name: "Casa", Icon: "🏠", Color: "#96CEB4"},
	{Name: "Limpeza", Icon: "🧹", Color: "#88D8B0"},
	{Name: "Higiene", Icon: "🧴", Color: "#FFEAA7"},
	{Name: "Açougue", Icon: "🥩", Color: "#E17055"},
	{Name: "Hortifruti", Icon: "🥬", Color: "#00B894"},
	{Name: "Laticínios", Icon: "🥛", Color: "#FDCB6E"},
	{Name: "Padaria", Icon: "🥖", Color: "#E9967A"},
	{Name: "Pet", Icon: "🐕", Color: "#A29BFE"},
	{Name: "Farmácia", Icon: "💊", Color: "#74B9FF"},
	{Name: "Vestuário", Icon: "👕", Color: "#6C5CE7"},
	{Name: "Eletrônicos", Icon: "🖥️", Color: "#0984E3"},
	{Name: "Lazer", Icon: "🎮", Color: "#FD79A8"},
	{Name: "Mercearia", Icon: "🛒", Color: "#FFD700"},
	{Name: "Congelados", Icon: "🧊", Color: "#74B9FF"},
	{Name: "Ferramentas", Icon: "🛠️", Color: "#636E72"},
	{Name: "Alimentação", Icon: "🍽️", Color: "#FAB1A0"},
	{Name: "Outros", Icon: "📦", Color: "#B2BEC3"},
}
