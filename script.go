package infinote

import (
	"encoding/json"
	"fmt"
	"time"
)

// scriptStep represents a single action in a gesture script.
type scriptStep struct {
	Action string  `json:"action"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	X2     float64 `json:"x2,omitempty"`
	Y2     float64 `json:"y2,omitempty"`
	ToX2   float64 `json:"toX2,omitempty"`
	ToY2   float64 `json:"toY2,omitempty"`
	Steps  int     `json:"steps,omitempty"`
	Count  int     `json:"count,omitempty"`
	Millis int     `json:"millis,omitempty"`
	Touch  bool    `json:"touch,omitempty"`
}

// gestureScript is the top-level JSON structure for a gesture script.
type gestureScript struct {
	Steps []scriptStep `json:"steps"`
}

// GestureScript replays a JSON-described gesture sequence against a Board,
// useful for scripted repro cases and interaction demos. Actions: "click",
// "tap", "doubletap", "doubleclick", "drag" (touch flag selects the pointer
// kind), "pinch", "wheel", and "wait".
type GestureScript struct {
	steps []scriptStep
}

// LoadGestureScript parses a JSON gesture script.
func LoadGestureScript(data []byte) (*GestureScript, error) {
	var script gestureScript
	if err := json.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse gesture script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse gesture script: no steps")
	}
	return &GestureScript{steps: script.Steps}, nil
}

// Run replays the script against the board starting at the given time and
// returns the time after the final step.
func (g *GestureScript) Run(b *Board, now time.Time) (time.Time, error) {
	for i, st := range g.steps {
		switch st.Action {
		case "click":
			now = b.InjectClick(Vec2{st.X, st.Y}, now)
		case "tap":
			now = b.InjectTap(Vec2{st.X, st.Y}, now)
		case "doubletap":
			now = b.InjectDoubleTap(Vec2{st.X, st.Y}, now)
		case "doubleclick":
			now = b.InjectDoubleClick(Vec2{st.X, st.Y}, now)
		case "drag":
			kind := PointerMouse
			if st.Touch {
				kind = PointerTouch
			}
			now = b.InjectDrag(kind, Vec2{st.FromX, st.FromY}, Vec2{st.ToX, st.ToY}, st.Steps, now)
		case "pinch":
			now = b.InjectPinch(
				Vec2{st.FromX, st.FromY}, Vec2{st.X2, st.Y2},
				Vec2{st.ToX, st.ToY}, Vec2{st.ToX2, st.ToY2},
				st.Steps, now)
		case "wheel":
			count := st.Count
			if count == 0 {
				count = 1
			}
			now = b.InjectWheel(Vec2{st.X, st.Y}, count, now)
		case "wait":
			ms := st.Millis
			if ms <= 0 {
				ms = int(createDelay / time.Millisecond)
			}
			now = b.InjectWait(now, now.Add(time.Duration(ms)*time.Millisecond))
		default:
			return now, fmt.Errorf("gesture script step %d: unknown action %q", i, st.Action)
		}
	}
	return now, nil
}
