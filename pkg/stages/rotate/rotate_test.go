package rotate

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/user/slidecap/pkg/pipeline"
)

func toRotate(img image.Image, turns int) pipeline.RotateInput {
	return pipeline.RotateInput{Image: img, Turns: turns}
}

func TestTurnsFromName(t *testing.T) {
	tests := []struct {
		name  string
		turns int
		ok    bool
	}{
		{name: "slide_0012_rotation_3.jpg", turns: 3, ok: true},
		{name: "slide_0001_rotation_1.png", turns: 1, ok: true},
		{name: "slide_0100_rotation_0.jpeg", turns: 0, ok: true},
		{name: "slide_0012.jpg", ok: false},
		{name: "slide_0012_rotation_4.jpg", ok: false},
		{name: "slide_12_rotation_1.jpg", ok: false},
		{name: "notes.txt", ok: false},
	}

	for _, tt := range tests {
		turns, ok := TurnsFromName(tt.name)
		if ok != tt.ok {
			t.Errorf("%s: expected ok=%v, got %v", tt.name, tt.ok, ok)
			continue
		}
		if ok && turns != tt.turns {
			t.Errorf("%s: expected %d turns, got %d", tt.name, tt.turns, turns)
		}
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "slide_0012_rotation_3.jpg", want: "slide_0012.jpg"},
		{in: "slide_0001_rotation_1.png", want: "slide_0001.png"},
		{in: "slide_0012.jpg", want: "slide_0012.jpg"},
		{in: "notes.txt", want: "notes.txt"},
	}
	for _, tt := range tests {
		if got := BaseName(tt.in); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

// markedFrame has a red pixel in the top-left corner, so rotations are
// observable.
func markedFrame() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{A: 255})
		}
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	return img
}

func isRed(c color.NRGBA) bool {
	return c.R == 255 && c.G == 0 && c.B == 0
}

func TestStage_Execute(t *testing.T) {
	stage := NewStage()
	ctx := context.Background()

	toNRGBA := func(img image.Image) *image.NRGBA {
		out, ok := img.(*image.NRGBA)
		if !ok {
			t.Fatalf("expected *image.NRGBA output, got %T", img)
		}
		return out
	}

	// 0 turns: unchanged dimensions, mark stays top-left.
	r0, err := stage.Execute(ctx, toRotate(markedFrame(), 0))
	if err != nil {
		t.Fatalf("Execute(0): %v", err)
	}
	if b := r0.Image.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("0 turns: expected 4x2, got %dx%d", b.Dx(), b.Dy())
	}

	// 1 turn counter-clockwise: 4x2 becomes 2x4, top-left mark moves to
	// bottom-left.
	r1, err := stage.Execute(ctx, toRotate(markedFrame(), 1))
	if err != nil {
		t.Fatalf("Execute(1): %v", err)
	}
	img1 := toNRGBA(r1.Image)
	if b := img1.Bounds(); b.Dx() != 2 || b.Dy() != 4 {
		t.Fatalf("1 turn: expected 2x4, got %dx%d", b.Dx(), b.Dy())
	}
	if !isRed(img1.NRGBAAt(0, 3)) {
		t.Error("1 turn: expected the mark at the bottom-left")
	}

	// 2 turns: same dimensions, mark moves to bottom-right.
	r2, err := stage.Execute(ctx, toRotate(markedFrame(), 2))
	if err != nil {
		t.Fatalf("Execute(2): %v", err)
	}
	img2 := toNRGBA(r2.Image)
	if b := img2.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Fatalf("2 turns: expected 4x2, got %dx%d", b.Dx(), b.Dy())
	}
	if !isRed(img2.NRGBAAt(3, 1)) {
		t.Error("2 turns: expected the mark at the bottom-right")
	}

	// 3 turns: 2x4 again, mark moves to the top-right.
	r3, err := stage.Execute(ctx, toRotate(markedFrame(), 3))
	if err != nil {
		t.Fatalf("Execute(3): %v", err)
	}
	img3 := toNRGBA(r3.Image)
	if !isRed(img3.NRGBAAt(1, 0)) {
		t.Error("3 turns: expected the mark at the top-right")
	}

	// Negative turns normalize mod 4.
	rn, err := stage.Execute(ctx, toRotate(markedFrame(), -3))
	if err != nil {
		t.Fatalf("Execute(-3): %v", err)
	}
	imgN := toNRGBA(rn.Image)
	if !isRed(imgN.NRGBAAt(0, 3)) {
		t.Error("-3 turns: expected the same result as 1 turn")
	}
}

func TestStage_Execute_NilImage(t *testing.T) {
	if _, err := NewStage().Execute(context.Background(), toRotate(nil, 1)); err == nil {
		t.Error("expected an error for a nil image")
	}
}

func writeSlide(t *testing.T, dir, name string) {
	t.Helper()
	if err := imaging.Save(markedFrame(), filepath.Join(dir, name)); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestPass_Run(t *testing.T) {
	dir := t.TempDir()
	writeSlide(t, dir, "slide_0001_rotation_1.png")
	writeSlide(t, dir, "slide_0002_rotation_0.png")
	writeSlide(t, dir, "slide_0003.png")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	rotated, err := NewPass(nil, 95).Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rotated != 1 {
		t.Errorf("rotated: expected 1, got %d", rotated)
	}

	// The rotated slide is renamed and turned on its side.
	img, err := imaging.Open(filepath.Join(dir, "slide_0001.png"))
	if err != nil {
		t.Fatalf("open rotated slide: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 4 {
		t.Errorf("rotated slide: expected 2x4, got %dx%d", b.Dx(), b.Dy())
	}

	// The zero-turn slide keeps its pixels but loses the suffix.
	img, err = imaging.Open(filepath.Join(dir, "slide_0002.png"))
	if err != nil {
		t.Fatalf("open zero-turn slide: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("zero-turn slide: expected 4x2, got %dx%d", b.Dx(), b.Dy())
	}

	// No rotation metadata survives the pass.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if _, ok := TurnsFromName(entry.Name()); ok {
			t.Errorf("metadata name %s left behind", entry.Name())
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "slide_0003.png")); err != nil {
		t.Errorf("plain slide: %v", err)
	}
}

func TestPass_Run_ForcedTurns(t *testing.T) {
	dir := t.TempDir()
	writeSlide(t, dir, "slide_0001.png")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	turns := 1
	rotated, err := NewPass(&turns, 95).Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rotated != 1 {
		t.Errorf("rotated: expected 1, got %d", rotated)
	}

	img, err := imaging.Open(filepath.Join(dir, "slide_0001.png"))
	if err != nil {
		t.Fatalf("open slide: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 4 {
		t.Errorf("expected 2x4 after a forced turn, got %dx%d", b.Dx(), b.Dy())
	}
}
