// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/domicil/ai"
	"github.com/poiesic/domicil/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ConstraintParser implements ai.ConstraintParser using OpenAI-compatible chat APIs.
type ConstraintParser struct {
	client llms.Model
	logger *slog.Logger
}

// constraintPayload matches the JSON structure expected from the LLM.
type constraintPayload struct {
	LocationKeyword *string `json:"location_keyword"`
	PriceMin        *int64  `json:"price_min"`
	PriceMax        *int64  `json:"price_max"`
	BedroomsMin     *int    `json:"bedrooms_min"`
	BedroomsMax     *int    `json:"bedrooms_max"`
	FloorsMin       *int    `json:"floors_min"`
	FloorsMax       *int    `json:"floors_max"`
	PropertyType    *string `json:"property_type"`
	ListingType     *string `json:"listing_type"`
	FreeText        *string `json:"free_text"`
}

// newConstraintParser is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newConstraintParser(config *ai.Config) (*ConstraintParser, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ParserHost),
		openai.WithToken("none"),
		openai.WithModel(config.ParserModel),
	)
	if err != nil {
		return nil, err
	}

	return &ConstraintParser{
		client: client,
		logger: slog.Default().With("component", "openai-parser"),
	}, nil
}

// NewConstraintParser creates a new constraint parser using the provided configuration.
//
// Returns ai.ConstraintParser interface to enforce abstraction.
func NewConstraintParser(config *ai.Config) (ai.ConstraintParser, error) {
	return newConstraintParser(config)
}

// ParseConstraints extracts structured search constraints from query text
// using an LLM. The result is validated before being returned; malformed
// model output is never silently corrected.
func (p *ConstraintParser) ParseConstraints(ctx context.Context, query string) (*core.ConstraintSet, error) {
	systemPrompt := buildConstraintPrompt()
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(strings.TrimSpace(query)),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var payload constraintPayload
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := p.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			p.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			p.logger.Debug("no choices returned from model")
			return nil, fmt.Errorf("constraint parser: empty model response")
		}

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(response.Choices[0].Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &payload); err != nil {
			p.logger.Warn("malformed constraint JSON, retrying", "attempt", attempt+1, "err", err)
			lastErr = err
			continue
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		return nil, fmt.Errorf("constraint parser: unparseable model output: %w", lastErr)
	}

	cs := payload.toConstraintSet()
	if err := core.ValidateConstraintSet(cs); err != nil {
		return nil, err
	}
	return cs, nil
}

func (p *constraintPayload) toConstraintSet() *core.ConstraintSet {
	cs := &core.ConstraintSet{
		PriceMin:    p.PriceMin,
		PriceMax:    p.PriceMax,
		BedroomsMin: p.BedroomsMin,
		BedroomsMax: p.BedroomsMax,
		FloorsMin:   p.FloorsMin,
		FloorsMax:   p.FloorsMax,
	}
	if p.LocationKeyword != nil {
		cs.LocationKeyword = strings.ToLower(strings.TrimSpace(*p.LocationKeyword))
	}
	if p.PropertyType != nil {
		cs.PropertyType = strings.ToLower(strings.TrimSpace(*p.PropertyType))
	}
	if p.ListingType != nil {
		cs.ListingType = strings.ToLower(strings.TrimSpace(*p.ListingType))
	}
	if p.FreeText != nil {
		cs.FreeText = strings.TrimSpace(*p.FreeText)
	}
	return cs
}
