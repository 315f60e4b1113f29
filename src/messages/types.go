package messages

// Message is the base interface for the one-way controller->surface messages.
type Message interface {
	Type() string
}

// MessageType constants for type identification
const (
	TypeUpdateInstruction = "update-instruction"
	TypeHideInstruction   = "hide-instruction"
	TypeAnalysisResult    = "analysis-result"
	TypeClearResult       = "clear-result"
	TypeError             = "error"
)

// UpdateInstruction replaces the instructional text shown on the surface.
type UpdateInstruction struct {
	Text string
}

func (m UpdateInstruction) Type() string { return TypeUpdateInstruction }

// HideInstruction hides the instructional overlay ahead of a capture so the
// screenshot does not photograph it.
type HideInstruction struct{}

func (m HideInstruction) Type() string { return TypeHideInstruction }

// AnalysisResult carries the provider's answer text.
type AnalysisResult struct {
	Text string
}

func (m AnalysisResult) Type() string { return TypeAnalysisResult }

// ClearResult removes any displayed answer (sent on reset).
type ClearResult struct{}

func (m ClearResult) Type() string { return TypeClearResult }

// Error reports a capture or dispatch failure to the user.
type Error struct {
	Message string
}

func (m Error) Type() string { return TypeError }
