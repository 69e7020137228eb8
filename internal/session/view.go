package session

import (
	"github.com/google/uuid"

	"github.com/gokatarajesh/ai-quiz/internal/quiz"
)

// View is the client-facing session state. The answer of the current question
// is only disclosed once it has been locked.
type View struct {
	ID            string        `json:"id"`
	Phase         quiz.Phase    `json:"phase"`
	Topic         string        `json:"topic,omitempty"`
	Level         int           `json:"level,omitempty"`
	CurrentIndex  int           `json:"current_index"`
	Total         int           `json:"total"`
	Question      *QuestionView `json:"question,omitempty"`
	Selected      *string       `json:"selected,omitempty"`
	CorrectAnswer *string       `json:"correct_answer,omitempty"`
	Score         int           `json:"score"`
	Ratio         *float64      `json:"ratio,omitempty"`
	Band          string        `json:"band,omitempty"`
	Error         string        `json:"error,omitempty"`
	Version       uint64        `json:"version"`
}

// QuestionView is a question without its answer.
type QuestionView struct {
	Question string   `json:"question"`
	Choices  []string `json:"choices"`
}

// NewView converts a machine snapshot into a View.
func NewView(id uuid.UUID, snap quiz.Snapshot) View {
	v := View{
		ID:           id.String(),
		Phase:        snap.Phase,
		Topic:        snap.Topic,
		Level:        int(snap.Level),
		CurrentIndex: snap.CurrentIndex,
		Total:        snap.Total,
		Selected:     snap.Selected,
		Score:        snap.Score,
		Error:        snap.LastError,
		Version:      snap.Version,
	}
	if snap.Current != nil {
		v.Question = &QuestionView{Question: snap.Current.Question, Choices: snap.Current.Choices}
		if snap.Phase == quiz.PhaseRevealing || snap.Phase == quiz.PhaseComplete {
			answer := snap.Current.Answer
			v.CorrectAnswer = &answer
		}
	}
	if snap.Result != nil {
		ratio := snap.Result.Ratio
		v.Ratio = &ratio
		v.Band = string(snap.Result.Band)
	}
	return v
}
