package popularity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// AIEstimate is the structured answer requested from the model.
type AIEstimate struct {
	Popularity float64 `json:"popularity" jsonschema:"minimum=1,maximum=100,description=Tourism popularity from 1 (obscure) to 100 (world famous)"`
	Rating     float64 `json:"rating" jsonschema:"minimum=1,maximum=5,description=Typical visitor rating from 1 to 5"`
}

const aiSystemPrompt = `You rate the tourism popularity of landmarks. Consider historical significance, visitor numbers, cultural importance, architectural value, media coverage and accessibility. Answer with a popularity between 1 and 100 and a visitor rating between 1 and 5.`

// AI asks an OpenAI chat model for an estimate. It is only consulted when no
// other source knows the landmark.
type AI struct {
	Model  string
	client openai.Client
	schema any
}

// NewAI returns an AI source. opts are passed to the OpenAI client, e.g.
// option.WithAPIKey.
func NewAI(model string, opts ...option.RequestOption) (*AI, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schemaObj := reflector.Reflect(&AIEstimate{})
	if schemaObj.Type == "" {
		schemaObj.Type = "object"
	}

	schemaBytes, err := json.Marshal(schemaObj)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schema any
	if err := json.Unmarshal(schemaBytes, &schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}

	return &AI{
		Model:  model,
		client: openai.NewClient(opts...),
		schema: schema,
	}, nil
}

func (a *AI) Name() string { return SourceAI }

func (a *AI) Lookup(ctx context.Context, q Query) (*Estimate, error) {
	description := q.Description
	if description == "" {
		description = "No description available"
	}
	prompt := fmt.Sprintf("Rate the tourism popularity of %q in %s.\n\nDescription: %s", q.Name, q.Location, description)

	completion, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(aiSystemPrompt),
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(a.Model),
		MaxTokens:   openai.Int(200),
		Temperature: openai.Float(0.3),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "landmark_popularity",
					Description: openai.String("Estimated tourism popularity and rating of a landmark"),
					Schema:      a.schema,
					Strict:      openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call OpenAI: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return nil, nil
	}

	var answer AIEstimate
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &answer); err != nil {
		return nil, fmt.Errorf("failed to parse AI estimate: %w", err)
	}

	return &Estimate{
		Popularity: max(1, min(100, answer.Popularity)),
		Rating:     max(1, min(5, answer.Rating)),
		Source:     SourceAI,
		Confidence: ConfidenceMedium,
	}, nil
}
