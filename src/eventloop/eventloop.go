package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	gohotkey "golang.design/x/hotkey"

	"snapask/src/clipboard"
	"snapask/src/hotkey"
	"snapask/src/screenshot"
	"snapask/src/session"
	"snapask/src/singleinstance"
	"snapask/src/surface"
	"snapask/src/worker"
)

// Prompt is the fixed instruction text sent to the provider with every
// dispatch, ahead of the accumulated screenshots.
const Prompt = "These screenshots show a question or problem, captured in order. " +
	"Read all of them together and answer the question or solve the problem. " +
	"Reply with the answer only."

// settleDelay gives the OS compositor time to finish hiding the window
// before the screen is sampled, so the capture does not photograph the
// window itself.
const settleDelay = 200 * time.Millisecond

var errBusy = errors.New("busy, please retry")

// Loop is the single-threaded coordinator for the four hotkey operations
// and delegated ask requests. All session mutation happens here.
type Loop struct {
	session *session.State
	surface surface.Surface
	pool    *worker.Pool
	srv     singleinstance.Server

	busy    bool
	results chan result

	captureCh chan struct{}
	addCh     chan struct{}
	resetCh   chan struct{}
	quitCh    chan struct{}

	capture  func() (screenshot.Capture, error)
	sleep    func(time.Duration)
	copyText func(string) error
	settle   time.Duration
	onQuit   func()
}

type result struct {
	text   string
	err    error
	target resultTarget
}

type resultTarget interface {
	OnSuccess(text string)
	OnError(err error)
	Close()
}

// hotkeyTarget delivers dispatch outcomes of interactive captures: the
// answer goes to the surface and, as a convenience, to the clipboard.
type hotkeyTarget struct {
	surface surface.Surface
	copy    func(string) error
}

func (t hotkeyTarget) OnSuccess(text string) {
	t.surface.ShowResult(text)
	if t.copy != nil {
		if err := t.copy(text); err != nil {
			log.Printf("Failed to copy answer to clipboard: %v", err)
		}
	}
}

func (t hotkeyTarget) OnError(err error) {
	t.surface.ShowError(err.Error())
}

func (t hotkeyTarget) Close() {}

// delegatedTarget delivers an ask-once outcome back to the asking process.
type delegatedTarget struct {
	conn singleinstance.Conn
}

func (t delegatedTarget) OnSuccess(text string) {
	if err := t.conn.RespondSuccess(text); err != nil {
		log.Printf("Failed to deliver delegated answer: %v", err)
	}
}

func (t delegatedTarget) OnError(err error) {
	_ = t.conn.RespondError(err.Error())
}

func (t delegatedTarget) Close() {
	_ = t.conn.Close()
}

func New(st *session.State, surf surface.Surface, pool *worker.Pool) *Loop {
	return &Loop{
		session:   st,
		surface:   surf,
		pool:      pool,
		results:   make(chan result, 1),
		captureCh: make(chan struct{}, 4),
		addCh:     make(chan struct{}, 4),
		resetCh:   make(chan struct{}, 4),
		quitCh:    make(chan struct{}, 1),
		capture:   screenshot.CaptureScreen,
		sleep:     time.Sleep,
		copyText:  clipboard.Write,
		settle:    settleDelay,
	}
}

// SetOnQuit installs the teardown hook run when the quit hotkey or tray
// menu fires: unregister hotkeys, stop the tray, stop the UI loop.
func (l *Loop) SetOnQuit(fn func()) { l.onQuit = fn }

// StartHotkeys forwards keydown events from the four bindings into the loop.
// Events arriving while a prior forward is still pending are dropped, never
// queued beyond the small channel buffer.
func (l *Loop) StartHotkeys(b *hotkey.Bindings) {
	forward := func(src <-chan gohotkey.Event, dst chan struct{}) {
		for range src {
			select {
			case dst <- struct{}{}:
			default:
			}
		}
	}
	go forward(b.CaptureKeydown(), l.captureCh)
	go forward(b.AddKeydown(), l.addCh)
	go forward(b.ResetKeydown(), l.resetCh)
	go forward(b.QuitKeydown(), l.quitCh)
}

// Run starts the single-instance server and processes hotkey events,
// delegated asks, and dispatch results until ctx is cancelled or the quit
// operation fires.
func (l *Loop) Run(ctx context.Context) error {
	l.srv = singleinstance.NewServer()
	if err := l.srv.Start(ctx); err != nil {
		return err
	}
	defer l.srv.Close()
	defer l.pool.Close()

	if p := l.srv.Port(); p > 0 {
		log.Printf("Resident listening on 127.0.0.1:%d", p)
	}

	reqCh := make(chan singleinstance.Conn, 4)
	go func() {
		for {
			conn, err := l.srv.Next(ctx)
			if err != nil {
				close(reqCh)
				return
			}
			reqCh <- conn
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.captureCh:
			l.handleFinalize(ctx)
		case <-l.addCh:
			l.handleAdd()
		case <-l.resetCh:
			l.handleReset()
		case <-l.quitCh:
			l.handleQuit()
			return nil
		case conn, ok := <-reqCh:
			if !ok {
				return nil
			}
			l.handleConn(ctx, conn)
		case res := <-l.results:
			l.handleResult(res)
		}
	}
}

// handleFinalize performs single-capture-and-finalize: one capture appended
// to the session, then the entire accumulated sequence is dispatched.
func (l *Loop) handleFinalize(ctx context.Context) {
	if l.busy {
		log.Printf("handleFinalize: busy, dropping")
		l.surface.ShowError(errBusy.Error())
		return
	}

	img, err := l.captureOne()
	if err != nil {
		log.Printf("handleFinalize: capture error: %v", err)
		l.surface.ShowError(err.Error())
		return
	}
	l.session.Append(img)

	l.surface.UpdateInstruction("Analyzing screenshots...")
	l.dispatch(ctx, hotkeyTarget{surface: l.surface, copy: l.copyText}, imagePayloads(l.session.Images()))
}

// handleAdd performs add-to-session: arm the multi-capture flag if needed,
// capture once, append, and restate the instruction. No dispatch.
func (l *Loop) handleAdd() {
	if l.busy {
		log.Printf("handleAdd: busy, dropping")
		l.surface.ShowError(errBusy.Error())
		return
	}

	if l.session.Arm() {
		l.surface.UpdateInstruction(accumulatingInstruction(l.session.Len()))
	}

	img, err := l.captureOne()
	if err != nil {
		log.Printf("handleAdd: capture error: %v", err)
		l.surface.ShowError(err.Error())
		return
	}
	l.session.Append(img)

	l.surface.UpdateInstruction(accumulatingInstruction(l.session.Len()))
}

// handleReset clears the session unconditionally, even while a dispatch is
// in flight; the stale result will still surface when it lands.
func (l *Loop) handleReset() {
	l.session.Reset()
	l.surface.ClearResult()
	l.surface.UpdateInstruction(DefaultInstruction())
}

func (l *Loop) handleQuit() {
	log.Printf("handleQuit: quitting")
	if l.onQuit != nil {
		l.onQuit()
	}
}

// handleConn serves a delegated ask: one fresh capture, dispatched alone.
// The resident's session is left untouched.
func (l *Loop) handleConn(ctx context.Context, conn singleinstance.Conn) {
	target := delegatedTarget{conn: conn}
	if l.busy {
		target.OnError(errBusy)
		target.Close()
		return
	}

	img, err := l.captureOne()
	if err != nil {
		target.OnError(err)
		target.Close()
		return
	}

	l.dispatch(ctx, target, [][]byte{img.Data})
}

// captureOne runs the capture sub-protocol: hide the instruction overlay and
// the window, wait the settle delay, capture, and re-show. The deferred
// Show guarantees the window never stays hidden because of an error.
func (l *Loop) captureOne() (session.Image, error) {
	l.surface.HideInstruction()
	l.surface.Hide()
	defer l.surface.Show()

	l.sleep(l.settle)

	shot, err := l.capture()
	if err != nil {
		return session.Image{}, fmt.Errorf("capture failed: %w", err)
	}
	return session.Image{Data: shot.Data, Path: shot.Path}, nil
}

func (l *Loop) dispatch(ctx context.Context, target resultTarget, images [][]byte) {
	l.busy = true
	submitted := l.pool.Submit(ctx, Prompt, images, func(text string, err error) {
		l.results <- result{text: text, err: err, target: target}
	})
	if !submitted {
		l.busy = false
		target.OnError(errBusy)
		target.Close()
	}
}

func (l *Loop) handleResult(res result) {
	l.busy = false
	defer res.target.Close()

	if res.err != nil {
		log.Printf("handleResult: dispatch error: %v", res.err)
		res.target.OnError(res.err)
		return
	}
	res.target.OnSuccess(res.text)
}

func imagePayloads(images []session.Image) [][]byte {
	out := make([][]byte, len(images))
	for i, img := range images {
		out[i] = img.Data
	}
	return out
}

// DefaultInstruction is the idle text shown on the surface.
func DefaultInstruction() string {
	return fmt.Sprintf("Press %s to ask about your screen.\n%s adds more screenshots first, %s starts over, %s quits.",
		hotkey.Combo("S"), hotkey.Combo("A"), hotkey.Combo("R"), hotkey.Combo("Q"))
}

func accumulatingInstruction(n int) string {
	return fmt.Sprintf("%d screenshot(s) in this session.\n%s adds another, %s asks about all of them, %s starts over.",
		n, hotkey.Combo("A"), hotkey.Combo("S"), hotkey.Combo("R"))
}
