package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"recibo/internal/model"
	"recibo/internal/rules"
)

const systemPrompt = "Você é um classificador JSON de produtos de supermercado. Responda APENAS JSON válido."

// maxFewShot caps how many recent corrections are embedded in the prompt.
const maxFewShot = 15

// BatchClassifier assigns categories to item names the rule tier could not
// settle, in one chat call per batch. Model output is never trusted as-is:
// every answer is validated against the known category set and degraded to
// Outros when it doesn't fit. Only transport failures propagate.
type BatchClassifier struct {
	client ChatClient
	logger *slog.Logger
}

// NewBatchClassifier creates a batch classifier on top of a chat client.
func NewBatchClassifier(client ChatClient, logger *slog.Logger) *BatchClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchClassifier{client: client, logger: logger}
}

// ClassifyBatch classifies every name in one call. The returned map has a
// key for every input name; unmatched or unparseable answers collapse to
// Outros. The error is non-nil only for transport-level failures.
func (b *BatchClassifier) ClassifyBatch(ctx context.Context, names []string, categories []string, corrections []model.Correction) (map[string]string, error) {
	if len(names) == 0 {
		return map[string]string{}, nil
	}

	prompt := buildBatchPrompt(names, categories, corrections)

	content, err := b.client.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("batch classification failed: %w", err)
	}

	raw := map[string]string{}
	if err := json.Unmarshal([]byte(stripMarkdownFences(content)), &raw); err != nil {
		b.logger.Warn("model returned invalid JSON, degrading batch",
			"error", err,
			"items", len(names))
		return degradeAll(names), nil
	}

	result := make(map[string]string, len(names))
	for name, category := range raw {
		result[name] = normalizeCategory(category, categories)
	}
	for _, name := range names {
		if _, ok := result[name]; !ok {
			result[name] = rules.Uncategorized
		}
	}

	b.logger.Debug("batch classified", "items", len(names))
	return result, nil
}

// buildBatchPrompt assembles the single prompt for a batch: the valid
// category set, general disambiguation rules, recent corrections as
// few-shot examples, and the item list. Strict key-value JSON is demanded.
func buildBatchPrompt(names []string, categories []string, corrections []model.Correction) string {
	catsJSON, _ := json.Marshal(categories)
	namesJSON, _ := json.Marshal(names)

	examples := ""
	if len(corrections) > 0 {
		if len(corrections) > maxFewShot {
			corrections = corrections[:maxFewShot]
		}
		pairs := make([]string, 0, len(corrections))
		for _, c := range corrections {
			pairs = append(pairs, fmt.Sprintf("%q: %q", c.Term, c.NewCategory))
		}
		examples = fmt.Sprintf("\nHISTÓRICO DE CORREÇÕES (siga estas regras):\n{%s}\n", strings.Join(pairs, ", "))
	}

	return fmt.Sprintf(`Classifique cada produto em UMA categoria.

CATEGORIAS VÁLIDAS: %s

REGRAS IMPORTANTES:
- FGO = Frango → Açougue
- BOV = Bovino → Açougue
- SUI = Suíno → Açougue
- CONG = Congelado
- SEARA, SADIA, PERDIGAO = marcas de carne → Açougue
- Pizza, Lasanha congelada → Congelados
- Iogurte, Queijo, Leite → Laticínios
- Arroz, Feijão, Macarrão → Mercearia
- Frutas, Verduras → Hortifruti
- Sabão, Detergente, Desinfetante → Limpeza
- Shampoo, Sabonete, Creme dental → Higiene
- Ração de cachorro/gato → Pet
- Se não souber → Outros
%s
PRODUTOS A CLASSIFICAR: %s

Responda APENAS um JSON válido no formato: {"nome_produto": "categoria"}
Não inclua explicações, apenas o JSON.`, catsJSON, examples, namesJSON)
}

// normalizeCategory validates a model answer against the known set: exact
// match, then case-insensitive substring match either way, else Outros.
func normalizeCategory(answer string, categories []string) string {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return rules.Uncategorized
	}
	for _, cat := range categories {
		if answer == cat {
			return cat
		}
	}
	lowerAnswer := strings.ToLower(answer)
	for _, cat := range categories {
		lowerCat := strings.ToLower(cat)
		if strings.Contains(lowerAnswer, lowerCat) || strings.Contains(lowerCat, lowerAnswer) {
			return cat
		}
	}
	return rules.Uncategorized
}

func degradeAll(names []string) map[string]string {
	result := make(map[string]string, len(names))
	for _, name := range names {
		result[name] = rules.Uncategorized
	}
	return result
}

// stripMarkdownFences unwraps ```json blocks some models insist on.
func stripMarkdownFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimPrefix(content, "json")
	if idx := strings.LastIndex(content, "```"); idx >= 0 {
		content = content[:idx]
	}
	return strings.TrimSpace(content)
}
