package app

import "strings"

// OptionStatus classifies how an option should be rendered.
type OptionStatus string

const (
	// OptionNeutral is an unselected option (or, after answering, any option
	// that is neither the correct one nor the user's wrong pick).
	OptionNeutral OptionStatus = "neutral"
	// OptionSelected is the pending selection before the answer is confirmed.
	OptionSelected OptionStatus = "selected"
	// OptionCorrect marks the correct option after answering.
	OptionCorrect OptionStatus = "correct"
	// OptionWrong marks the user's incorrect pick after answering.
	OptionWrong OptionStatus = "wrong"
)

// OptionView is one renderable answer option.
type OptionView struct {
	Label  string       `json:"label"` // "A", "B", ...
	Text   string       `json:"text"`  // option text with the stored label stripped
	Value  string       `json:"value"` // full stored option string; selection key
	Status OptionStatus `json:"status"`
}

// QuestionView is the renderable state of the current question.
type QuestionView struct {
	QuestionID   string       `json:"questionId"`
	Number       int          `json:"number"` // 1-based position in the session
	Total        int          `json:"total"`
	Difficulty   string       `json:"difficulty,omitempty"`
	QuestionText string       `json:"questionText"`
	Options      []OptionView `json:"options"`
	Answered     bool         `json:"answered"`
	Explanation  string       `json:"explanation,omitempty"` // revealed after answering
	Hints        []string     `json:"hints,omitempty"`
}

// AnswerResult is the outcome of confirming a selection.
type AnswerResult struct {
	QuestionID    string `json:"questionId"`
	Selected      string `json:"selected"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

// OptionText strips the stored inline label from an option: "B) Paris"
// renders as "Paris". Options without a ")" are shown unchanged.
func OptionText(option string) string {
	if i := strings.Index(option, ")"); i >= 0 {
		return strings.TrimSpace(option[i+1:])
	}
	return option
}

// optionLabel derives the display label from the option's position.
func optionLabel(index int) string {
	return string(rune('A' + index))
}

// presentation is the per-question answer state. It is discarded whenever the
// displayed question changes, so revisiting a question starts clean.
type presentation struct {
	selected string
	answered bool
	correct  bool
}

// classify decides the render status of one option given the answer state.
func (p *presentation) classify(option, correctAnswer string) OptionStatus {
	if !p.answered {
		if p.selected == option {
			return OptionSelected
		}
		return OptionNeutral
	}
	if option == correctAnswer {
		return OptionCorrect
	}
	if option == p.selected {
		return OptionWrong
	}
	return OptionNeutral
}
