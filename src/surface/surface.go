package surface

import "snapask/src/messages"

// Surface is the presentation window contract the controller drives. The
// five message operations are one-way and asynchronous; Hide and Show are
// synchronous because the capture sub-protocol depends on the window being
// off screen before the capture primitive samples it.
type Surface interface {
	UpdateInstruction(text string)
	HideInstruction()
	ShowResult(text string)
	ClearResult()
	ShowError(message string)
	Hide()
	Show()
}

// viewState is the pure model of what the surface shows. Kept separate from
// the fyne widgets so message handling is testable headlessly.
type viewState struct {
	instruction       string
	instructionHidden bool
	result            string
}

func (s *viewState) apply(msg messages.Message) {
	switch m := msg.(type) {
	case messages.UpdateInstruction:
		s.instruction = m.Text
		s.instructionHidden = false
	case messages.HideInstruction:
		s.instructionHidden = true
	case messages.AnalysisResult:
		s.result = m.Text
	case messages.ClearResult:
		s.result = ""
	case messages.Error:
		s.result = "Error: " + m.Message
	}
}
