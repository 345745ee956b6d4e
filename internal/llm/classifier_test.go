package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recibo/internal/model"
	"recibo/internal/rules"
)

type fakeChat struct {
	response string
	err      error

	lastSystem string
	lastUser   string
}

func (f *fakeChat) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

var testCategories = []string{"Bebidas", "Mercearia", "Laticínios", "Outros"}

func TestClassifyBatch(t *testing.T) {
	chat := &fakeChat{response: `{"SUCO DETOX 300ML": "Bebidas", "FARINHA LACTEA": "Mercearia"}`}
	classifier := NewBatchClassifier(chat, nil)

	result, err := classifier.ClassifyBatch(context.Background(),
		[]string{"SUCO DETOX 300ML", "FARINHA LACTEA"}, testCategories, nil)
	require.NoError(t, err)

	assert.Equal(t, "Bebidas", result["SUCO DETOX 300ML"])
	assert.Equal(t, "Mercearia", result["FARINHA LACTEA"])
}

func TestClassifyBatchMarkdownFences(t *testing.T) {
	chat := &fakeChat{response: "```json\n{\"SUCO DETOX 300ML\": \"Bebidas\"}\n```"}
	classifier := NewBatchClassifier(chat, nil)

	result, err := classifier.ClassifyBatch(context.Background(),
		[]string{"SUCO DETOX 300ML"}, testCategories, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bebidas", result["SUCO DETOX 300ML"])
}

func TestClassifyBatchMalformedJSONDegrades(t *testing.T) {
	chat := &fakeChat{response: "desculpe, não consegui classificar"}
	classifier := NewBatchClassifier(chat, nil)

	result, err := classifier.ClassifyBatch(context.Background(),
		[]string{"ITEM A", "ITEM B"}, testCategories, nil)
	require.NoError(t, err, "bad model output is not a transport failure")

	assert.Equal(t, rules.Uncategorized, result["ITEM A"])
	assert.Equal(t, rules.Uncategorized, result["ITEM B"])
}

func TestClassifyBatchTransportError(t *testing.T) {
	chat := &fakeChat{err: errors.New("status 500")}
	classifier := NewBatchClassifier(chat, nil)

	_, err := classifier.ClassifyBatch(context.Background(),
		[]string{"ITEM A"}, testCategories, nil)
	require.Error(t, err)
}

func TestClassifyBatchNormalizesAnswers(t *testing.T) {
	chat := &fakeChat{response: `{
		"A": "bebidas",
		"B": "Categoria: Mercearia",
		"C": "Chuteiras",
		"D": ""
	}`}
	classifier := NewBatchClassifier(chat, nil)

	result, err := classifier.ClassifyBatch(context.Background(),
		[]string{"A", "B", "C", "D", "E"}, testCategories, nil)
	require.NoError(t, err)

	assert.Equal(t, "Bebidas", result["A"], "case-insensitive match")
	assert.Equal(t, "Mercearia", result["B"], "substring match")
	assert.Equal(t, rules.Uncategorized, result["C"], "invented category collapses")
	assert.Equal(t, rules.Uncategorized, result["D"], "empty answer collapses")
	assert.Equal(t, rules.Uncategorized, result["E"], "missing name gets a default")
}

func TestClassifyBatchEmptyInput(t *testing.T) {
	chat := &fakeChat{}
	classifier := NewBatchClassifier(chat, nil)

	result, err := classifier.ClassifyBatch(context.Background(), nil, testCategories, nil)
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.Empty(t, chat.lastUser, "empty batches must not reach the model")
}

func TestBuildBatchPromptIncludesCorrections(t *testing.T) {
	corrections := []model.Correction{
		{Term: "LEITE UHT", NewCategory: "Laticínios"},
	}
	prompt := buildBatchPrompt([]string{"LEITE UHT 1L"}, testCategories, corrections)

	assert.Contains(t, prompt, `"LEITE UHT": "Laticínios"`)
	assert.Contains(t, prompt, "LEITE UHT 1L")
	assert.Contains(t, prompt, "Bebidas")
}

func TestStripMarkdownFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a": "b"}`, `{"a": "b"}`},
		{"fenced", "```json\n{\"a\": \"b\"}\n```", `{"a": "b"}`},
		{"fenced no lang", "```\n{\"a\": \"b\"}\n```", `{"a": "b"}`},
		{"leading noise trimmed", "  {\"a\": \"b\"}  ", `{"a": "b"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripMarkdownFences(tt.input))
		})
	}
}
