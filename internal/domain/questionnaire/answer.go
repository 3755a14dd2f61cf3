package questionnaire

import (
	"bytes"
	"encoding/json"
)

// Wire literals used by the paper form and the tablet UI.
const (
	Yes = "DA"
	No  = "NU"
)

// Answer is a yes/no question decoded from "DA"/"NU". Anything else,
// including a missing key or a JSON boolean, decodes to AnswerUnset.
type Answer int8

const (
	AnswerUnset Answer = iota
	AnswerNo
	AnswerYes
)

// IsYes reports whether the patient answered "DA".
func (a Answer) IsYes() bool { return a == AnswerYes }

func (a Answer) String() string {
	switch a {
	case AnswerYes:
		return Yes
	case AnswerNo:
		return No
	default:
		return ""
	}
}

// ParseAnswer decodes a wire literal. Matching is exact.
func ParseAnswer(s string) Answer {
	switch s {
	case Yes:
		return AnswerYes
	case No:
		return AnswerNo
	default:
		return AnswerUnset
	}
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a == AnswerUnset {
		return []byte("null"), nil
	}
	return json.Marshal(a.String())
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		*a = AnswerUnset
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a = ParseAnswer(s)
	return nil
}
