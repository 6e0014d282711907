package dto

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Input is a raw form value. It unmarshals from a JSON string, a JSON number
// or null, so JSON clients and HTML form posts reach the service layer with
// the same text and the same parsing rules.
type Input string

func (in *Input) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*in = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*in = Input(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*in = Input(n.String())
	return nil
}

// String returns the trimmed value.
func (in Input) String() string { return strings.TrimSpace(string(in)) }

// Empty reports whether nothing but whitespace was submitted.
func (in Input) Empty() bool { return in.String() == "" }
