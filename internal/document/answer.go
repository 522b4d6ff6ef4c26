package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type answerKind uint8

const (
	answerUnset answerKind = iota
	answerBool
	answerText
)

// Answer is an operator-supplied value: unset, a boolean, or free text.
// The zero value is unset, which is distinct from an explicit false.
type Answer struct {
	kind answerKind
	b    bool
	text string
}

func Unset() Answer { return Answer{} }

func Bool(v bool) Answer { return Answer{kind: answerBool, b: v} }

func Text(s string) Answer { return Answer{kind: answerText, text: s} }

func (a Answer) IsSet() bool { return a.kind != answerUnset }

// BoolValue returns the boolean and whether the answer holds one.
func (a Answer) BoolValue() (bool, bool) { return a.b, a.kind == answerBool }

// TextValue returns the text and whether the answer holds text.
func (a Answer) TextValue() (string, bool) { return a.text, a.kind == answerText }

// ParseAnswer normalizes an operator response: y/Y and n/N become booleans,
// an empty response stays unset and anything else is kept as text.
func ParseAnswer(response string) Answer {
	switch response {
	case "":
		return Unset()
	case "y", "Y":
		return Bool(true)
	case "n", "N":
		return Bool(false)
	default:
		return Text(response)
	}
}

func (a Answer) String() string {
	switch a.kind {
	case answerBool:
		if a.b {
			return "yes"
		}
		return "no"
	case answerText:
		return a.text
	default:
		return "unset"
	}
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case answerBool:
		return json.Marshal(a.b)
	case answerText:
		return marshalNoEscape(a.text)
	default:
		return []byte("null"), nil
	}
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*a = Answer{}
	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case bytes.Equal(data, []byte("true")):
		*a = Bool(true)
		return nil
	case bytes.Equal(data, []byte("false")):
		*a = Bool(false)
		return nil
	case bytes.HasPrefix(data, []byte(`"`)):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Text(s)
		return nil
	default:
		return fmt.Errorf("answer must be null, a boolean or a string, got %s", truncate(string(data), 32))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "..."
}
