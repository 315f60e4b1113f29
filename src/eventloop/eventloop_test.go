package eventloop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"snapask/src/screenshot"
	"snapask/src/session"
	"snapask/src/worker"
)

type fakeSurface struct {
	hidden            bool
	instructionHidden bool
	instructions      []string
	results           []string
	errors            []string
	cleared           int
	hideCount         int
	showCount         int
}

func (s *fakeSurface) UpdateInstruction(text string) {
	s.instructions = append(s.instructions, text)
	s.instructionHidden = false
}
func (s *fakeSurface) HideInstruction()         { s.instructionHidden = true }
func (s *fakeSurface) ShowResult(text string)   { s.results = append(s.results, text) }
func (s *fakeSurface) ClearResult()             { s.cleared++ }
func (s *fakeSurface) ShowError(message string) { s.errors = append(s.errors, message) }
func (s *fakeSurface) Hide()                    { s.hidden = true; s.hideCount++ }
func (s *fakeSurface) Show()                    { s.hidden = false; s.showCount++ }

type fakeProvider struct {
	mu     sync.Mutex
	calls  [][][]byte
	prompt string
	answer string
	err    error
	block  chan struct{}
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Answer(ctx context.Context, prompt string, images [][]byte) (string, error) {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompt = prompt
	p.calls = append(p.calls, images)
	return p.answer, p.err
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func (p *fakeProvider) lastCall() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return nil
	}
	return p.calls[len(p.calls)-1]
}

func newTestLoop(t *testing.T, p *fakeProvider) (*Loop, *fakeSurface) {
	t.Helper()
	surf := &fakeSurface{}
	pool := worker.New(p)
	t.Cleanup(pool.Close)

	l := New(session.New(), surf, pool)
	captureSeq := 0
	l.capture = func() (screenshot.Capture, error) {
		captureSeq++
		return screenshot.Capture{
			Data: []byte{byte(captureSeq)},
			Path: fmt.Sprintf("screenshot_%d.png", captureSeq),
		}, nil
	}
	l.sleep = func(time.Duration) {}
	l.copyText = func(string) error { return nil }
	return l, surf
}

func (l *Loop) awaitResult(t *testing.T) {
	t.Helper()
	select {
	case res := <-l.results:
		l.handleResult(res)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dispatch result")
	}
}

func TestFinalizeDispatchesAllAccumulatedImages(t *testing.T) {
	p := &fakeProvider{answer: "42"}
	l, surf := newTestLoop(t, p)
	ctx := context.Background()

	l.handleAdd()
	l.handleAdd()
	l.handleFinalize(ctx)
	l.awaitResult(t)

	images := l.session.Images()
	if len(images) != 3 {
		t.Fatalf("Expected 3 images in session, got %d", len(images))
	}
	if !l.session.MultiCapture() {
		t.Error("Multi-capture flag must survive finalize; only reset clears it")
	}

	sent := p.lastCall()
	if len(sent) != 3 {
		t.Fatalf("Expected dispatch of 3 images, got %d", len(sent))
	}
	for i, img := range sent {
		if img[0] != byte(i+1) {
			t.Errorf("Dispatch image %d out of capture order", i)
		}
	}
	if p.prompt != Prompt {
		t.Errorf("Expected fixed instruction text, got %q", p.prompt)
	}
	if len(surf.results) != 1 || surf.results[0] != "42" {
		t.Errorf("Expected analysis-result '42', got %v", surf.results)
	}
}

func TestFinalizeAloneSendsSingleImage(t *testing.T) {
	p := &fakeProvider{answer: "ok"}
	l, _ := newTestLoop(t, p)

	l.handleFinalize(context.Background())
	l.awaitResult(t)

	if got := len(p.lastCall()); got != 1 {
		t.Errorf("Expected 1 image dispatched, got %d", got)
	}
	if l.session.MultiCapture() {
		t.Error("Finalize must not set the multi-capture flag")
	}
}

func TestResetClearsSessionAndSurface(t *testing.T) {
	p := &fakeProvider{answer: "ok"}
	l, surf := newTestLoop(t, p)

	l.handleAdd()
	l.handleAdd()
	l.handleReset()

	if l.session.Len() != 0 {
		t.Errorf("Expected empty session after reset, got %d images", l.session.Len())
	}
	if l.session.MultiCapture() {
		t.Error("Expected multi-capture flag unset after reset")
	}
	if surf.cleared != 1 {
		t.Errorf("Expected one clear-result, got %d", surf.cleared)
	}
	if last := surf.instructions[len(surf.instructions)-1]; last != DefaultInstruction() {
		t.Errorf("Expected default instruction restored, got %q", last)
	}
}

func TestCaptureErrorReshowsSurfaceAndLeavesSession(t *testing.T) {
	p := &fakeProvider{}
	l, surf := newTestLoop(t, p)
	l.capture = func() (screenshot.Capture, error) {
		return screenshot.Capture{}, errors.New("boom")
	}

	l.handleFinalize(context.Background())

	if surf.hidden {
		t.Error("Surface must be visible again after a failed capture")
	}
	if surf.showCount != surf.hideCount {
		t.Errorf("Mismatched hide/show: hide=%d show=%d", surf.hideCount, surf.showCount)
	}
	if len(surf.errors) != 1 {
		t.Fatalf("Expected one error message, got %v", surf.errors)
	}
	if l.session.Len() != 0 {
		t.Error("No partial image may be appended on capture failure")
	}
	if p.callCount() != 0 {
		t.Error("Provider must not be invoked after a capture failure")
	}
}

func TestDispatchErrorKeepsSession(t *testing.T) {
	p := &fakeProvider{err: errors.New("model overloaded")}
	l, surf := newTestLoop(t, p)

	l.handleAdd()
	l.handleFinalize(context.Background())
	l.awaitResult(t)

	if l.session.Len() != 2 {
		t.Errorf("Session must keep its images after a dispatch error, got %d", l.session.Len())
	}
	if len(surf.errors) != 1 {
		t.Fatalf("Expected dispatch error on surface, got %v", surf.errors)
	}
	if len(surf.results) != 0 {
		t.Errorf("No result expected, got %v", surf.results)
	}
	if l.busy {
		t.Error("Loop must not stay busy after a failed dispatch")
	}
}

func TestReentrantFinalizeIsDropped(t *testing.T) {
	p := &fakeProvider{answer: "slow", block: make(chan struct{})}
	l, surf := newTestLoop(t, p)
	ctx := context.Background()

	l.handleFinalize(ctx)
	if !l.busy {
		t.Fatal("Loop should be busy while dispatch is in flight")
	}

	l.handleFinalize(ctx)
	l.handleAdd()
	if len(surf.errors) != 2 {
		t.Fatalf("Expected two busy errors, got %v", surf.errors)
	}
	if l.session.Len() != 1 {
		t.Errorf("Dropped operations must not touch the session, got %d images", l.session.Len())
	}

	close(p.block)
	l.awaitResult(t)

	if p.callCount() != 1 {
		t.Errorf("Expected exactly one dispatch, got %d", p.callCount())
	}
}

func TestAddArmsFlagAndRestatesInstruction(t *testing.T) {
	p := &fakeProvider{}
	l, surf := newTestLoop(t, p)

	l.handleAdd()
	if !l.session.MultiCapture() {
		t.Fatal("First add must arm the multi-capture flag")
	}
	first := len(surf.instructions)

	l.handleAdd()
	if len(surf.instructions) <= first {
		t.Error("Each add must restate the instruction")
	}
	if p.callCount() != 0 {
		t.Error("Add-to-session must never dispatch")
	}
}

type fakeConn struct {
	success string
	errMsg  string
	closed  bool
}

func (c *fakeConn) RespondSuccess(text string) error { c.success = text; return nil }
func (c *fakeConn) RespondError(msg string) error    { c.errMsg = msg; return nil }
func (c *fakeConn) Close() error                     { c.closed = true; return nil }

func TestDelegatedAskLeavesSessionUntouched(t *testing.T) {
	p := &fakeProvider{answer: "delegated answer"}
	l, _ := newTestLoop(t, p)

	l.handleAdd()
	conn := &fakeConn{}
	l.handleConn(context.Background(), conn)
	l.awaitResult(t)

	if conn.success != "delegated answer" {
		t.Errorf("Expected delegated answer, got %q / err %q", conn.success, conn.errMsg)
	}
	if !conn.closed {
		t.Error("Delegated connection must be closed")
	}
	if got := len(p.lastCall()); got != 1 {
		t.Errorf("Delegated ask must dispatch only its own capture, got %d images", got)
	}
	if l.session.Len() != 1 {
		t.Errorf("Delegated ask must not touch the session, got %d images", l.session.Len())
	}
}
