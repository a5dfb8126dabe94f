package app_test

import (
	"context"
	"testing"

	"procap-study-service/internal/app"
	"procap-study-service/internal/domain"
	"procap-study-service/internal/infra/memory"
)

func TestOptionText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"B) Paris", "Paris"},
		{"A) 42", "42"},
		{"C)   spaced out  ", "spaced out"},
		{"no label here", "no label here"}, // malformed: shown unchanged
		{"", ""},
	}
	for _, c := range cases {
		if got := app.OptionText(c.in); got != c.want {
			t.Fatalf("OptionText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestOptionClassification(t *testing.T) {
	ctx := context.Background()
	gateway := memory.NewGateway()
	gateway.SeedQuestions([]domain.Question{
		{
			ID:            "q1",
			QuestionText:  "Qual é a capital da França?",
			Options:       []string{"A) Londres", "B) Paris", "C) Madri"},
			CorrectAnswer: "B) Paris",
		},
	})
	study := app.NewStudyService(gateway.Questions(), gateway.Notebooks(), gateway.Answers())
	controller := app.NewController(study)
	user, _ := gateway.Users().Create(ctx, "student", "senha")
	controller.SetUser(user)

	if err := controller.StartRandomBlock(ctx, 1); err != nil {
		t.Fatalf("start: %v", err)
	}

	view, err := controller.SelectOption("C) Madri")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if status := statusOf(t, view, "C) Madri"); status != app.OptionSelected {
		t.Fatalf("pending pick should be selected, got %s", status)
	}
	if status := statusOf(t, view, "B) Paris"); status != app.OptionNeutral {
		t.Fatalf("unselected option should be neutral before answering, got %s", status)
	}

	if _, err := controller.ConfirmAnswer(ctx); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	view, err = controller.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if status := statusOf(t, view, "B) Paris"); status != app.OptionCorrect {
		t.Fatalf("correct option must be highlighted, got %s", status)
	}
	if status := statusOf(t, view, "C) Madri"); status != app.OptionWrong {
		t.Fatalf("wrong pick must be highlighted, got %s", status)
	}
	if status := statusOf(t, view, "A) Londres"); status != app.OptionNeutral {
		t.Fatalf("untouched option must stay neutral, got %s", status)
	}
}

func TestViewLabelsAndText(t *testing.T) {
	ctx := context.Background()
	gateway := memory.NewGateway()
	gateway.SeedQuestions([]domain.Question{
		{
			ID:            "q1",
			QuestionText:  "Pick one",
			Options:       []string{"A) first", "B) second"},
			CorrectAnswer: "A) first",
		},
	})
	study := app.NewStudyService(gateway.Questions(), gateway.Notebooks(), gateway.Answers())
	controller := app.NewController(study)
	user, _ := gateway.Users().Create(ctx, "student", "senha")
	controller.SetUser(user)

	if err := controller.StartRandomBlock(ctx, 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	view, err := controller.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if view.Options[0].Label != "A" || view.Options[1].Label != "B" {
		t.Fatalf("expected positional labels A/B, got %q/%q", view.Options[0].Label, view.Options[1].Label)
	}
	if view.Options[0].Text != "first" || view.Options[1].Text != "second" {
		t.Fatalf("expected stripped texts, got %q/%q", view.Options[0].Text, view.Options[1].Text)
	}
	if view.Explanation != "" {
		t.Fatalf("explanation must stay hidden before answering")
	}
}

func statusOf(t *testing.T, view app.QuestionView, value string) app.OptionStatus {
	t.Helper()
	for _, option := range view.Options {
		if option.Value == value {
			return option.Status
		}
	}
	t.Fatalf("option %q not in view", value)
	return app.OptionNeutral
}
