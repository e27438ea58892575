package pipeline

import (
	"context"
	"errors"
	"testing"
)

func TestStageFunc(t *testing.T) {
	double := StageFunc[int, int](func(ctx context.Context, n int) (int, error) {
		return n * 2, nil
	})

	var stage Stage[int, int] = double
	out, err := stage.Execute(context.Background(), 21)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out != 42 {
		t.Errorf("expected 42, got %d", out)
	}
}

func TestStageFunc_PropagatesError(t *testing.T) {
	fail := errors.New("boom")
	stage := StageFunc[string, string](func(ctx context.Context, s string) (string, error) {
		return "", fail
	})

	if _, err := stage.Execute(context.Background(), "in"); !errors.Is(err, fail) {
		t.Errorf("expected the stage error, got %v", err)
	}
}
