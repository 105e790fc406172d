package questiongen

import "github.com/VitoPalumboPodcast/Invalsi/internal/llm"

// QuestionsSchema is the response schema for a batch of questions. The
// root is an object because strict structured-output modes reject
// top-level arrays. Every property is required; fields that do not apply
// to a question's type are sent empty.
var QuestionsSchema = &llm.Schema{
	Name:        "invalsi-questions",
	Description: "A batch of INVALSI-style test questions with answers and explanations",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": "Short unique identifier, may be empty",
						},
						"type": map[string]any{
							"type":        "string",
							"enum":        []any{"multiple_choice", "matrix"},
							"description": "multiple_choice for 4 options, matrix for a true/false style grid",
						},
						"topic": map[string]any{
							"type":        "string",
							"description": "Area of the framework, e.g. Spazio e figure, Riflessione sulla lingua, Reading B1",
						},
						"contextText": map[string]any{
							"type":        "string",
							"description": "Reading passage or problem context shared by related questions, empty if none",
						},
						"audioScript": map[string]any{
							"type":        "string",
							"description": "Transcript read aloud for listening items, empty otherwise",
						},
						"text": map[string]any{
							"type":        "string",
							"description": "The question prompt. Use unicode superscripts for powers (cm², x³)",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Exactly 4 options for multiple_choice, empty array for matrix",
						},
						"correctAnswerIndex": map[string]any{
							"type":        "integer",
							"minimum":     0,
							"maximum":     3,
							"description": "0-based index of the correct option; 0 for matrix",
						},
						"matrixRows": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Statements to classify, empty array for multiple_choice",
						},
						"matrixCols": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Column headings, e.g. Vero and Falso; empty array for multiple_choice",
						},
						"matrixCorrectAnswer": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "integer"},
							"description": "0-based correct column for each row; empty array for multiple_choice",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Didactic explanation of the solution",
						},
					},
					"required": []any{
						"id", "type", "topic", "contextText", "audioScript", "text", "options",
						"correctAnswerIndex", "matrixRows", "matrixCols", "matrixCorrectAnswer", "explanation",
					},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}
