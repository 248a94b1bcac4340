package wire

// StateReplyLen is the exact length of the checksummed state-query reply.
const StateReplyLen = 14

// State reply byte offsets.
const (
	statePowerOffset = 2
	stateRedOffset   = 6
	stateGreenOffset = 7
	stateBlueOffset  = 8
	stateWarmOffset  = 9
	stateColdOffset  = 11
)

// State holds the raw fields decoded from a state-query reply.
type State struct {
	On         bool
	R, G, B    byte
	Warm, Cold byte
}

// ParseState validates a state-query reply and decodes its fields.
func ParseState(frame []byte) (State, error) {
	if err := ValidateFrame(frame, StateReplyLen); err != nil {
		return State{}, err
	}

	return State{
		On:   frame[statePowerOffset] == WordOn,
		R:    frame[stateRedOffset],
		G:    frame[stateGreenOffset],
		B:    frame[stateBlueOffset],
		Warm: frame[stateWarmOffset],
		Cold: frame[stateColdOffset],
	}, nil
}
