package recibo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"recibo/pkg/services"

	"github.com/shopspring/decimal"
)

const visionModel = "gpt-4o-mini"

const visionPrompt = `Você é um leitor de comprovantes de pagamento brasileiros (PIX, TED, boleto).
Analise a imagem ou documento e retorne APENAS um JSON válido, sem explicações ou markdown.

Formato da resposta:
{
  "valor": <número com ponto decimal ou null>,
  "banco": "<nome do banco ou string vazia>",
  "nome_pagador": "<nome de quem pagou ou string vazia>"
}

Regras:
- "valor" é o valor total transferido, sempre positivo (exemplo: 150.00)
- Se não for possível identificar um valor com certeza, retorne "valor": null
- "banco" é o banco ou instituição de origem (exemplo: "Nubank", "Itaú")
- "nome_pagador" é o nome da pessoa ou empresa que fez o pagamento
- Nunca invente valores: na dúvida, retorne null`

const extractAttempts = 3

// OpenAI calls the vision model to read receipts.
type OpenAI struct {
	token string
}

func NewOpenAI(token string) *OpenAI {
	return &OpenAI{
		token: token,
	}
}

type visionContent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

type visionRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string      `json:"role"`
		Content interface{} `json:"content"`
	} `json:"messages"`
}

type visionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type visionResult struct {
	Valor       *float64 `json:"valor"`
	Banco       string   `json:"banco"`
	NomePagador string   `json:"nome_pagador"`
}

func dataURI(file []byte, kind services.MediaKind) string {
	mime := "image/jpeg"
	if kind == services.MediaPDF {
		mime = "application/pdf"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(file))
}

func (o *OpenAI) callVision(ctx context.Context, file []byte, kind services.MediaKind) (string, error) {
	userContent := []visionContent{
		{Type: "text", Text: "Leia este comprovante de pagamento."},
		{Type: "image_url", ImageURL: &struct {
			URL string `json:"url"`
		}{URL: dataURI(file, kind)}},
	}

	reqBody := visionRequest{
		Model: visionModel,
		Messages: []struct {
			Role    string      `json:"role"`
			Content interface{} `json:"content"`
		}{
			{Role: "system", Content: visionPrompt},
			{Role: "user", Content: userContent},
		},
	}

	jsonData, _ := json.Marshal(reqBody)

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://api.openai.com/v1/chat/completions",
		bytes.NewBuffer(jsonData))

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api error: %s", string(body))
	}

	var result visionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse vision response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", errors.New("no response from vision api")
	}

	return result.Choices[0].Message.Content, nil
}

// Extract reads a receipt with bounded exponential backoff: 3 attempts,
// 1s then 2s between them. A missing amount is not retried; that is the
// model saying "could not identify", a valid answer.
func (o *OpenAI) Extract(ctx context.Context, file []byte, kind services.MediaKind) (*services.Extraction, error) {
	var lastErr error
	for attempt := 0; attempt < extractAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(1<<(attempt-1)) * time.Second):
			}
		}

		content, err := o.callVision(ctx, file, kind)
		if err != nil {
			lastErr = err
			continue
		}

		extraction, err := parseVisionContent(content)
		if err != nil {
			lastErr = err
			continue
		}

		return extraction, nil
	}

	return nil, fmt.Errorf("vision extraction failed after %d attempts: %w", extractAttempts, lastErr)
}

// parseVisionContent unmarshals the model's JSON answer, tolerating
// markdown code fences around it.
func parseVisionContent(content string) (*services.Extraction, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var result visionResult
	if err := json.Unmarshal([]byte(trimmed), &result); err != nil {
		return nil, fmt.Errorf("failed to parse extraction: %w, response: %s", err, content)
	}

	extraction := &services.Extraction{
		Bank:      result.Banco,
		PayerName: result.NomePagador,
		RawText:   content,
	}

	if result.Valor != nil && *result.Valor > 0 {
		amount := decimal.NewFromFloat(*result.Valor).Round(2)
		extraction.Amount = &amount
	}

	return extraction, nil
}
