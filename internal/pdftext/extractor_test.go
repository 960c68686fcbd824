package pdftext

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type fakeRunner struct {
	stdout []byte
	stderr []byte
	err    error

	name string
	args []string
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.name = name
	r.args = args
	return r.stdout, r.stderr, r.err
}

func newTestExtractor(runner Runner) Extractor {
	return newExtractorWithRunner(Config{}, runner, slog.New(slog.DiscardHandler))
}

func TestExtractTextRunsPdftotext(t *testing.T) {
	runner := &fakeRunner{stdout: []byte("invoice text")}
	e := newTestExtractor(runner)

	got, err := e.ExtractText(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if got != "invoice text" {
		t.Errorf("text: got %q", got)
	}
	if runner.name != "pdftotext" {
		t.Errorf("binary: got %q", runner.name)
	}
	wantFlags := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if len(runner.args) != len(wantFlags)+2 {
		t.Fatalf("args: got %v", runner.args)
	}
	for i, flag := range wantFlags {
		if runner.args[i] != flag {
			t.Errorf("args[%d]: got %q, want %q", i, runner.args[i], flag)
		}
	}
	if !strings.HasSuffix(runner.args[len(runner.args)-2], ".pdf") {
		t.Errorf("input path: got %q", runner.args[len(runner.args)-2])
	}
	if runner.args[len(runner.args)-1] != "-" {
		t.Errorf("output arg: got %q, want stdout marker", runner.args[len(runner.args)-1])
	}
}

func TestExtractTextEmptyOutputIsNotAnError(t *testing.T) {
	e := newTestExtractor(&fakeRunner{stdout: nil})
	got, err := e.ExtractText(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if got != "" {
		t.Errorf("text: got %q, want empty", got)
	}
}

func TestExtractTextPropagatesRunFailure(t *testing.T) {
	cause := errors.New("exit status 1")
	e := newTestExtractor(&fakeRunner{stderr: []byte("Syntax Error"), err: cause})
	_, err := e.ExtractText(context.Background(), []byte("not a pdf"))
	if !errors.Is(err, cause) {
		t.Fatalf("got %v, want the runner's error", err)
	}
}

func TestTruncateCapsStderr(t *testing.T) {
	long := strings.Repeat("x", 9000)
	got := truncate(long, 8<<10)
	if !strings.HasSuffix(got, "...(truncated)") {
		t.Errorf("got suffix %q", got[len(got)-20:])
	}
	if got := truncate("short", 8<<10); got != "short" {
		t.Errorf("got %q", got)
	}
}
