package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		level   int
		want    Request
		wantErr bool
	}{
		{name: "level 1", topic: "History", level: 1, want: Request{Topic: "History", Level: 1, ExpectedCount: 10}},
		{name: "level 3", topic: "History", level: 3, want: Request{Topic: "History", Level: 3, ExpectedCount: 10}},
		{name: "level 4", topic: "Go", level: 4, want: Request{Topic: "Go", Level: 4, ExpectedCount: 15}},
		{name: "level 5", topic: "Go", level: 5, want: Request{Topic: "Go", Level: 5, ExpectedCount: 20}},
		{name: "trims topic", topic: "  World War II \n", level: 2, want: Request{Topic: "World War II", Level: 2, ExpectedCount: 10}},
		{name: "empty topic", topic: "", level: 1, wantErr: true},
		{name: "blank topic", topic: " \t ", level: 1, wantErr: true},
		{name: "level zero", topic: "History", level: 0, wantErr: true},
		{name: "level six", topic: "History", level: 6, wantErr: true},
		{name: "negative level", topic: "History", level: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(tt.topic, tt.level)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				assert.False(t, IsRetryable(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateAcceptsConformingBatch(t *testing.T) {
	req, err := Build("History", 3)
	require.NoError(t, err)

	questions, err := Validate(req, mustJSON(t, fixtureQuestions(10)))
	require.NoError(t, err)
	require.Len(t, questions, 10)
	for _, q := range questions {
		assert.Len(t, q.Choices, ChoicesPerQuestion)
		assert.True(t, q.HasChoice(q.Answer))
	}
}

func TestValidateRejectsWholeBatch(t *testing.T) {
	req, err := Build("History", 3)
	require.NoError(t, err)

	withQuestion := func(mutate func(q *Question)) []byte {
		qs := fixtureQuestions(10)
		mutate(&qs[4])
		return mustJSON(t, qs)
	}

	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "nine of ten", raw: mustJSON(t, fixtureQuestions(9))},
		{name: "eleven of ten", raw: mustJSON(t, fixtureQuestions(11))},
		{name: "answer not in choices", raw: withQuestion(func(q *Question) { q.Answer = "E" })},
		{name: "three choices", raw: withQuestion(func(q *Question) { q.Choices = q.Choices[:3] })},
		{name: "five choices", raw: withQuestion(func(q *Question) { q.Choices = append(q.Choices, "E") })},
		{name: "duplicate choices", raw: withQuestion(func(q *Question) { q.Choices = []string{"A", "A", "B", "C"} })},
		{name: "blank question", raw: withQuestion(func(q *Question) { q.Question = "   " })},
		{name: "missing field", raw: []byte(`[{"question":"q","choices":["a","b","c","d"]}]`)},
		{name: "object not array", raw: []byte(`{"questions":[]}`)},
		{name: "not json", raw: []byte(`Sure! Here is your quiz:`)},
		{name: "empty", raw: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions, err := Validate(req, tt.raw)
			assert.Nil(t, questions)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrContractViolation)

			var cv *ContractViolationError
			require.ErrorAs(t, err, &cv)
			assert.NotEmpty(t, cv.Problems)
		})
	}
}

func TestCheckAccess(t *testing.T) {
	tests := []struct {
		name      string
		id        Identity
		trialUsed bool
		allowed   bool
	}{
		{name: "anonymous fresh", id: Anonymous{}, trialUsed: false, allowed: true},
		{name: "anonymous exhausted", id: Anonymous{}, trialUsed: true, allowed: false},
		{name: "nil identity exhausted", id: nil, trialUsed: true, allowed: false},
		{name: "member fresh", id: member{id: "u1"}, trialUsed: false, allowed: true},
		{name: "member with trial flag", id: member{id: "u1"}, trialUsed: true, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CheckAccess(tt.id, tt.trialUsed)
			assert.Equal(t, tt.allowed, d.Allowed)
			if tt.allowed {
				assert.NoError(t, d.Err())
				return
			}
			assert.Equal(t, DenyTrialExhausted, d.Reason)
			var denied *AccessDeniedError
			require.ErrorAs(t, d.Err(), &denied)
			assert.Equal(t, DenyTrialExhausted, denied.Reason)
		})
	}
}

func TestCacheKeyNormalizesTopic(t *testing.T) {
	a := CacheKey(Request{Topic: "World  War II", Level: 3, ExpectedCount: 10})
	b := CacheKey(Request{Topic: "world war ii", Level: 3, ExpectedCount: 10})
	c := CacheKey(Request{Topic: "world war ii", Level: 4, ExpectedCount: 15})

	assert.Equal(t, "quiz:3:10:world war ii", a)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestValidateQuestionsMatchesValidate(t *testing.T) {
	req, err := Build("History", 3)
	require.NoError(t, err)

	require.NoError(t, ValidateQuestions(req, fixtureQuestions(10)))

	mutations := map[string]func(q *Question){
		"answer not in choices": func(q *Question) { q.Answer = "E" },
		"three choices":         func(q *Question) { q.Choices = q.Choices[:3] },
		"duplicate choices":     func(q *Question) { q.Choices = []string{"A", "A", "B", "C"} },
		"blank question":        func(q *Question) { q.Question = " " },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			qs := fixtureQuestions(10)
			mutate(&qs[2])

			assert.ErrorIs(t, ValidateQuestions(req, qs), ErrContractViolation)
			_, rawErr := Validate(req, mustJSON(t, qs))
			assert.ErrorIs(t, rawErr, ErrContractViolation)
		})
	}

	err = ValidateQuestions(req, fixtureQuestions(9))
	var cv *ContractViolationError
	require.ErrorAs(t, err, &cv)
	assert.Equal(t, []string{"expected 10 questions, got 9"}, cv.Problems)
}
