package entities

type SwipePhase string

const (
	PhaseIdle       SwipePhase = "idle"
	PhaseDragging   SwipePhase = "dragging"
	PhaseCommitting SwipePhase = "committing"
	PhaseSettled    SwipePhase = "settled"
)

type SwipeDirection string

const (
	DirectionNone   SwipeDirection = ""
	DirectionRight  SwipeDirection = "right"
	DirectionLeft   SwipeDirection = "left"
	DirectionCancel SwipeDirection = "cancel"
)

type SwipeOutcome string

const (
	OutcomeComplete SwipeOutcome = "complete"
	OutcomeSkip     SwipeOutcome = "skip"
)

func (o SwipeOutcome) IsValid() bool {
	switch o {
	case OutcomeComplete, OutcomeSkip:
		return true
	default:
		return false
	}
}

// Outcome maps a committed direction to the outcome it produces.
// Cancel and None produce nothing.
func (d SwipeDirection) Outcome() (SwipeOutcome, bool) {
	switch d {
	case DirectionRight:
		return OutcomeComplete, true
	case DirectionLeft:
		return OutcomeSkip, true
	default:
		return "", false
	}
}

type SwipeState struct {
	Offset    float64        `json:"offset"`
	Phase     SwipePhase     `json:"phase"`
	Direction SwipeDirection `json:"direction,omitempty"`
}

// RenderTransform is the visual state of a card for a given offset.
type RenderTransform struct {
	TranslateX float64 `json:"translate_x"`
	RotateDeg  float64 `json:"rotate_deg"`
	Opacity    float64 `json:"opacity"`
}

// CardView is what an inbound gesture event returns to the caller.
type CardView struct {
	TaskID    string          `json:"task_id"`
	Accepted  bool            `json:"accepted"`
	State     SwipeState      `json:"state"`
	Transform RenderTransform `json:"transform"`
}
