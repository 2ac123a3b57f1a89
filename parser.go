package interviewquiz

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// questionArraySchema describes the only shape accepted from the completion API and the bank
const questionArraySchema = `{
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "object",
		"properties": {
			"question": {"type": "string"},
			"options": {"type": "array", "items": {"type": "string"}, "minItems": 4, "maxItems": 4},
			"correctAnswer": {"type": "integer", "minimum": 0, "maximum": 3},
			"explanation": {"type": "string"}
		},
		"required": ["question", "options", "correctAnswer", "explanation"]
	}
}`

var questionSchema = mustLoadSchema(questionArraySchema)

func mustLoadSchema(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(err)
	}
	return s
}

// ParseQuestions extracts the outermost JSON array from raw completion text and decodes it.
// Surrounding prose is ignored; only the structural shape of each record is checked.
func ParseQuestions(raw string) ([]Question, error) {
	span, ok := arraySpan(raw)
	if !ok {
		return nil, &ParseError{Reason: "no JSON array found in response"}
	}

	if !json.Valid([]byte(span)) {
		return nil, &ParseError{Reason: "response array is not valid JSON"}
	}

	result, err := questionSchema.Validate(gojsonschema.NewStringLoader(span))
	if err != nil {
		return nil, &ParseError{Reason: "schema validation failed", Err: err}
	}
	if !result.Valid() {
		var violations []string
		for _, e := range result.Errors() {
			violations = append(violations, e.String())
		}
		return nil, &ParseError{Reason: "unexpected question shape: " + strings.Join(violations, "; ")}
	}

	var questions []Question
	if err := json.Unmarshal([]byte(span), &questions); err != nil {
		return nil, &ParseError{Reason: "failed to decode questions", Err: err}
	}

	return questions, nil
}

// arraySpan returns the text from the first '[' to the last ']'
func arraySpan(raw string) (string, bool) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}
