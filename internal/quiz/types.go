package quiz

import (
	"strings"
)

// Level bounds.
const (
	MinLevel = 1
	MaxLevel = 5
)

// ChoicesPerQuestion is fixed by the generation contract.
const ChoicesPerQuestion = 4

// Level is a difficulty in [MinLevel, MaxLevel].
type Level int

// questionCounts maps difficulty to the number of questions a quiz must carry.
var questionCounts = map[Level]int{
	1: 10,
	2: 10,
	3: 10,
	4: 15,
	5: 20,
}

// Valid reports whether l is inside [MinLevel, MaxLevel].
func (l Level) Valid() bool {
	return l >= MinLevel && l <= MaxLevel
}

// QuestionCount returns the required question count, or 0 for an invalid level.
func (l Level) QuestionCount() int {
	return questionCounts[l]
}

// Question is a single multiple-choice item as delivered by the generator.
type Question struct {
	Question string   `json:"question"`
	Choices  []string `json:"choices"`
	Answer   string   `json:"answer"`
}

// IsCorrect compares a selected choice against the answer.
func (q Question) IsCorrect(choice string) bool {
	return choice == q.Answer
}

// HasChoice reports whether choice is one of q's choices.
func (q Question) HasChoice(choice string) bool {
	for _, c := range q.Choices {
		if c == choice {
			return true
		}
	}
	return false
}

// Request is a validated generation request descriptor.
type Request struct {
	Topic         string `json:"topic"`
	Level         Level  `json:"level"`
	ExpectedCount int    `json:"count"`
}

// Build validates topic and level and returns the request descriptor.
func Build(topic string, level int) (Request, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Request{}, invalidInput("topic is required")
	}
	lvl := Level(level)
	if !lvl.Valid() {
		return Request{}, invalidInput("level must be between %d and %d, got %d", MinLevel, MaxLevel, level)
	}
	return Request{
		Topic:         topic,
		Level:         lvl,
		ExpectedCount: lvl.QuestionCount(),
	}, nil
}
