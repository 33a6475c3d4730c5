package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ResultID is the creation-time identifier of a Result.
//
// Older snapshots stored millisecond timestamps as JSON numbers; those
// decode into their decimal string form.
type ResultID string

// UnmarshalJSON accepts a JSON string or an integer number.
func (id *ResultID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ResultID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("result id: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("result id %s is not an integer", n)
	}
	*id = ResultID(n.String())
	return nil
}

// Roster lists the players of a team placement. It keeps the shape it was
// given: a list of names, or one free-text string that is stored and encoded
// back verbatim.
type Roster struct {
	names  []string
	text   string
	isText bool
}

// Players returns a list roster.
func Players(names ...string) Roster {
	return Roster{names: append([]string(nil), names...)}
}

// RosterText returns a roster held as a single string.
func RosterText(s string) Roster {
	return Roster{text: s, isText: true}
}

// Names returns the listed names. A text roster has none.
func (r Roster) Names() []string {
	return append([]string(nil), r.names...)
}

// Text returns the free-text form and whether the roster has one.
func (r Roster) Text() (string, bool) {
	return r.text, r.isText
}

// IsZero reports whether the roster is absent.
func (r Roster) IsZero() bool {
	return !r.isText && len(r.names) == 0
}

// Normalize trims listed names and drops blanks. Text is kept as given
// unless it is blank, which leaves no roster.
func (r Roster) Normalize() Roster {
	if r.isText {
		if strings.TrimSpace(r.text) == "" {
			return Roster{}
		}
		return r
	}
	var out []string
	for _, n := range r.names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return Roster{names: out}
}

// Equal reports whether both rosters have the same shape and content.
func (r Roster) Equal(o Roster) bool {
	if r.isText || o.isText {
		return r.isText == o.isText && r.text == o.text
	}
	return slices.Equal(r.names, o.names)
}

// Clone returns an independent copy of r.
func (r Roster) Clone() Roster {
	if r.names != nil {
		r.names = append([]string(nil), r.names...)
	}
	return r
}

// MarshalJSON encodes a text roster as a string and a list roster as an
// array.
func (r Roster) MarshalJSON() ([]byte, error) {
	if r.isText {
		return json.Marshal(r.text)
	}
	if r.names == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.names)
}

// UnmarshalJSON accepts either a list of names or a single string.
func (r *Roster) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Roster{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RosterText(s).Normalize()
		return nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("team_players must be a string or a list of strings: %w", err)
	}
	*r = Players(names...).Normalize()
	return nil
}
