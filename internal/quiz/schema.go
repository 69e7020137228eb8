package quiz

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// questionSchema is the provider-independent contract for one generated question.
const questionSchema = `{
	"type": "object",
	"properties": {
		"question": {"type": "string", "minLength": 1},
		"choices": {"type": "array", "items": {"type": "string"}, "minItems": 4, "maxItems": 4, "uniqueItems": true},
		"answer": {"type": "string"}
	},
	"required": ["question", "choices", "answer"]
}`

// BatchSchema returns the JSON schema for a batch of exactly count questions.
func BatchSchema(count int) string {
	return fmt.Sprintf(`{"type":"array","minItems":%d,"maxItems":%d,"items":%s}`, count, count, questionSchema)
}

var compiledSchemas sync.Map // int -> *gojsonschema.Schema

func batchSchema(count int) (*gojsonschema.Schema, error) {
	if s, ok := compiledSchemas.Load(count); ok {
		return s.(*gojsonschema.Schema), nil
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(BatchSchema(count)))
	if err != nil {
		return nil, err
	}
	compiledSchemas.Store(count, s)
	return s, nil
}

// Validate checks a raw generation result against the contract for req and
// returns the decoded questions. A single malformed entry rejects the batch.
func Validate(req Request, raw []byte) ([]Question, error) {
	schema, err := batchSchema(req.ExpectedCount)
	if err != nil {
		return nil, fmt.Errorf("compile question schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		// not decodable JSON at all
		return nil, &ContractViolationError{Problems: []string{"result is not valid JSON: " + err.Error()}}
	}

	var problems []string
	if !result.Valid() {
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, &ContractViolationError{Problems: problems}
	}

	var questions []Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, &ContractViolationError{Problems: []string{"decode questions: " + err.Error()}}
	}

	// Membership and blank text are not expressible in the schema above.
	for i, q := range questions {
		problems = append(problems, contentProblems(i, q)...)
	}
	if len(problems) > 0 {
		return nil, &ContractViolationError{Problems: problems}
	}

	return questions, nil
}

// ValidateQuestions applies the same contract as Validate to an already
// decoded batch.
func ValidateQuestions(req Request, questions []Question) error {
	var problems []string
	if len(questions) != req.ExpectedCount {
		problems = append(problems, fmt.Sprintf("expected %d questions, got %d", req.ExpectedCount, len(questions)))
	}
	for i, q := range questions {
		if len(q.Choices) != ChoicesPerQuestion {
			problems = append(problems, fmt.Sprintf("question %d: expected %d choices, got %d", i, ChoicesPerQuestion, len(q.Choices)))
		}
		seen := make(map[string]struct{}, len(q.Choices))
		for _, c := range q.Choices {
			if _, dup := seen[c]; dup {
				problems = append(problems, fmt.Sprintf("question %d: duplicate choice %q", i, c))
			}
			seen[c] = struct{}{}
		}
		problems = append(problems, contentProblems(i, q)...)
	}
	if len(problems) > 0 {
		return &ContractViolationError{Problems: problems}
	}
	return nil
}

func contentProblems(i int, q Question) []string {
	var problems []string
	if strings.TrimSpace(q.Question) == "" {
		problems = append(problems, fmt.Sprintf("question %d: empty question text", i))
	}
	if !q.HasChoice(q.Answer) {
		problems = append(problems, fmt.Sprintf("question %d: answer %q is not one of its choices", i, q.Answer))
	}
	return problems
}
