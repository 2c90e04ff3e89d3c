package extraction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/statement-scanner/internal/logging"

	generativeai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GenerativeAIGateway calls Gemini through the github.com/google/generative-ai-go SDK.
type GenerativeAIGateway struct {
	client    *generativeai.Client
	modelName string
	logger    logging.Logger
}

// NewGenerativeAIGateway creates a GenerativeAIGateway authenticated with apiKey.
func NewGenerativeAIGateway(ctx context.Context, apiKey, model string, logger logging.Logger) (*GenerativeAIGateway, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := generativeai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create generative-ai client: %w", err)
	}

	return &GenerativeAIGateway{client: client, modelName: model, logger: logger}, nil
}

// Name identifies the gateway in logs.
func (g *GenerativeAIGateway) Name() string {
	return "generative-ai"
}

// Close releases the underlying client.
func (g *GenerativeAIGateway) Close() error {
	return g.client.Close()
}

// Extract sends the document inline with the extraction prompt and decodes
// the structured JSON answer.
func (g *GenerativeAIGateway) Extract(ctx context.Context, doc Document) (*Result, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = generativeAIResponseSchema(doc.Categories)
	model.SystemInstruction = generativeai.NewUserContent(generativeai.Text(systemInstruction))

	start := time.Now()
	resp, err := model.GenerateContent(ctx,
		generativeai.Blob{MIMEType: doc.MIMEType, Data: doc.Data},
		generativeai.Text(userPrompt),
	)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	g.logger.WithFields(
		logging.Field{Key: logging.FieldModel, Value: g.modelName},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()},
	).Debug("Gemini response received")

	return Decode(responseText(resp))
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *generativeai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(generativeai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

func generativeAIResponseSchema(categories []string) *generativeai.Schema {
	return &generativeai.Schema{
		Type: generativeai.TypeObject,
		Properties: map[string]*generativeai.Schema{
			"transactions": {
				Type: generativeai.TypeArray,
				Items: &generativeai.Schema{
					Type: generativeai.TypeObject,
					Properties: map[string]*generativeai.Schema{
						"date":        {Type: generativeai.TypeString, Description: descDate},
						"description": {Type: generativeai.TypeString, Description: descDescription},
						"cardLast4":   {Type: generativeai.TypeString, Description: descCardLast4},
						"amount":      {Type: generativeai.TypeNumber, Description: descAmount},
						"category":    {Type: generativeai.TypeString, Description: categoryDescription(categories)},
					},
					Required: transactionRequired,
				},
			},
			"startDate":      {Type: generativeai.TypeString, Description: descStartDate},
			"endDate":        {Type: generativeai.TypeString, Description: descEndDate},
			"statementTotal": {Type: generativeai.TypeNumber, Description: descStatementTotal},
		},
		Required: resultRequired,
	}
}
