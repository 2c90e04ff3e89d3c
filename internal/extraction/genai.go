package extraction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fjacquet/statement-scanner/internal/logging"

	"google.golang.org/genai"
)

// ErrMissingAPIKey is returned when a Gemini gateway is built without an API key.
var ErrMissingAPIKey = errors.New("API key is missing")

// GenAIGateway calls Gemini through the google.golang.org/genai SDK.
type GenAIGateway struct {
	client *genai.Client
	model  string
	logger logging.Logger
}

// NewGenAIGateway creates a GenAIGateway for the Gemini API backend.
func NewGenAIGateway(ctx context.Context, apiKey, model string, logger logging.Logger) (*GenAIGateway, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GenAIGateway{client: client, model: model, logger: logger}, nil
}

// Name identifies the gateway in logs.
func (g *GenAIGateway) Name() string {
	return "genai"
}

// Extract sends the document inline with the extraction prompt and decodes
// the structured JSON answer.
func (g *GenAIGateway) Extract(ctx context.Context, doc Document) (*Result, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: doc.MIMEType, Data: doc.Data}},
				{Text: userPrompt},
			},
		},
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   genaiResponseSchema(doc.Categories),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	g.logger.WithFields(
		logging.Field{Key: logging.FieldModel, Value: g.model},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()},
	).Debug("Gemini response received")

	return Decode(resp.Text())
}

func genaiResponseSchema(categories []string) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"transactions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"date":        {Type: genai.TypeString, Description: descDate},
						"description": {Type: genai.TypeString, Description: descDescription},
						"cardLast4":   {Type: genai.TypeString, Description: descCardLast4},
						"amount":      {Type: genai.TypeNumber, Description: descAmount},
						"category":    {Type: genai.TypeString, Description: categoryDescription(categories)},
					},
					Required: transactionRequired,
				},
			},
			"startDate":      {Type: genai.TypeString, Description: descStartDate},
			"endDate":        {Type: genai.TypeString, Description: descEndDate},
			"statementTotal": {Type: genai.TypeNumber, Description: descStatementTotal},
		},
		Required: resultRequired,
	}
}
