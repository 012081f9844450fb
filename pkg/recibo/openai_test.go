package recibo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVisionContent(t *testing.T) {
	extraction, err := parseVisionContent(`{"valor": 150.5, "banco": "Nubank", "nome_pagador": "Maria Silva"}`)
	require.NoError(t, err)
	require.NotNil(t, extraction.Amount)
	assert.Equal(t, "150.5", extraction.Amount.String())
	assert.Equal(t, "Nubank", extraction.Bank)
	assert.Equal(t, "Maria Silva", extraction.PayerName)
	assert.NotEmpty(t, extraction.RawText)
}

func TestParseVisionContentFenced(t *testing.T) {
	content := "```json\n{\"valor\": 42.5, \"banco\": \"Itaú\", \"nome_pagador\": \"\"}\n```"

	extraction, err := parseVisionContent(content)
	require.NoError(t, err)
	require.NotNil(t, extraction.Amount)
	assert.Equal(t, "42.5", extraction.Amount.String())
	assert.Equal(t, "Itaú", extraction.Bank)
}

func TestParseVisionContentNullAmount(t *testing.T) {
	extraction, err := parseVisionContent(`{"valor": null, "banco": "", "nome_pagador": ""}`)
	require.NoError(t, err)
	assert.Nil(t, extraction.Amount)
}

func TestParseVisionContentNonPositiveAmount(t *testing.T) {
	extraction, err := parseVisionContent(`{"valor": 0, "banco": "", "nome_pagador": ""}`)
	require.NoError(t, err)
	assert.Nil(t, extraction.Amount)

	extraction, err = parseVisionContent(`{"valor": -10, "banco": "", "nome_pagador": ""}`)
	require.NoError(t, err)
	assert.Nil(t, extraction.Amount)
}

func TestParseVisionContentRounding(t *testing.T) {
	extraction, err := parseVisionContent(`{"valor": 10.999, "banco": "", "nome_pagador": ""}`)
	require.NoError(t, err)
	require.NotNil(t, extraction.Amount)
	assert.Equal(t, "11", extraction.Amount.String())
}

func TestParseVisionContentInvalid(t *testing.T) {
	_, err := parseVisionContent("o comprovante mostra um pagamento de R$ 50")
	assert.Error(t, err)

	_, err = parseVisionContent("")
	assert.Error(t, err)
}
