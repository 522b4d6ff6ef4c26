package document

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Mention is the tri-state result of searching one document for another's name.
type Mention uint8

const (
	MentionUnknown Mention = iota
	MentionYes
	MentionNo
)

// MentionOf converts a confirmed boolean into a Mention.
func MentionOf(found bool) Mention {
	if found {
		return MentionYes
	}
	return MentionNo
}

func (m Mention) String() string {
	switch m {
	case MentionYes:
		return "yes"
	case MentionNo:
		return "no"
	default:
		return "unknown"
	}
}

func (m Mention) MarshalJSON() ([]byte, error) {
	switch m {
	case MentionYes:
		return []byte("true"), nil
	case MentionNo:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (m *Mention) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true":
		*m = MentionYes
	case "false":
		*m = MentionNo
	case "null":
		*m = MentionUnknown
	default:
		return fmt.Errorf("cross-reference must be true, false or null, got %s", truncate(string(data), 32))
	}
	return nil
}

// CrossRefs maps another document's display name to a Mention, keeping keys
// in insertion order. A missing key reads as MentionUnknown. The zero value is
// an empty map ready for use.
type CrossRefs struct {
	keys   []string
	values map[string]Mention
}

// Set adds or overwrites an entry. New keys go to the end.
func (c *CrossRefs) Set(name string, m Mention) {
	if c.values == nil {
		c.values = make(map[string]Mention)
	}
	if _, ok := c.values[name]; !ok {
		c.keys = append(c.keys, name)
	}
	c.values[name] = m
}

func (c *CrossRefs) Get(name string) Mention {
	return c.values[name]
}

// Has reports whether an entry exists for name, even an unknown one.
func (c *CrossRefs) Has(name string) bool {
	_, ok := c.values[name]
	return ok
}

func (c *CrossRefs) Keys() []string {
	return append([]string(nil), c.keys...)
}

func (c *CrossRefs) Len() int {
	return len(c.keys)
}

// MarshalJSON writes a JSON object whose member order follows insertion order.
func (c CrossRefs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := marshalNoEscape(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := c.values[key].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving member order.
func (c *CrossRefs) UnmarshalJSON(data []byte) error {
	*c = CrossRefs{}
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("crossrefs must be a JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("crossrefs key must be a string")
		}
		if c.Has(name) {
			return fmt.Errorf("duplicate crossrefs key %q", name)
		}
		var m Mention
		if err := dec.Decode(&m); err != nil {
			return fmt.Errorf("crossrefs[%q]: %w", name, err)
		}
		c.Set(name, m)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func marshalNoEscape(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
