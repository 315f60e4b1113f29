package surface

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"snapask/src/messages"
)

// Window is the fyne implementation of Surface. Messages are serialized
// through a channel and applied on the fyne UI thread one at a time.
type Window struct {
	win         fyne.Window
	instruction *widget.Label
	result      *widget.Label
	view        viewState
	msgs        chan messages.Message
}

func NewWindow(a fyne.App, defaultInstruction string) *Window {
	w := &Window{
		win:         a.NewWindow("snapask"),
		instruction: widget.NewLabel(defaultInstruction),
		result:      widget.NewLabel(""),
		view:        viewState{instruction: defaultInstruction},
		msgs:        make(chan messages.Message, 16),
	}
	w.instruction.Wrapping = fyne.TextWrapWord
	w.result.Wrapping = fyne.TextWrapWord

	w.win.SetContent(container.NewVBox(w.instruction, w.result))
	w.win.Resize(fyne.NewSize(480, 220))
	w.win.CenterOnScreen()
	// Closing the window hides it; only the quit hotkey or the tray menu
	// terminates the process.
	w.win.SetCloseIntercept(func() { w.win.Hide() })

	go w.run()
	return w
}

// ShowAndRun must be called from the main goroutine; it blocks for the
// lifetime of the application.
func (w *Window) ShowAndRun() {
	w.win.ShowAndRun()
}

func (w *Window) run() {
	for msg := range w.msgs {
		w.view.apply(msg)
		w.sync()
	}
}

func (w *Window) sync() {
	fyne.DoAndWait(func() {
		w.instruction.SetText(w.view.instruction)
		if w.view.instructionHidden {
			w.instruction.Hide()
		} else {
			w.instruction.Show()
		}
		w.result.SetText(w.view.result)
	})
}

func (w *Window) post(msg messages.Message) {
	w.msgs <- msg
}

func (w *Window) UpdateInstruction(text string) { w.post(messages.UpdateInstruction{Text: text}) }
func (w *Window) HideInstruction()              { w.post(messages.HideInstruction{}) }
func (w *Window) ShowResult(text string)        { w.post(messages.AnalysisResult{Text: text}) }
func (w *Window) ClearResult()                  { w.post(messages.ClearResult{}) }
func (w *Window) ShowError(message string)      { w.post(messages.Error{Message: message}) }

// Hide takes the window off screen before a capture. Blocks until the
// toolkit has processed the hide so the settle delay starts from a hidden
// window.
func (w *Window) Hide() {
	fyne.DoAndWait(w.win.Hide)
}

func (w *Window) Show() {
	fyne.DoAndWait(w.win.Show)
}
