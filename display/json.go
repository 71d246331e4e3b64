// Package display holds output helpers shared by the tagx commands: the
// --json switch, JSON marshaling, and pterm rendering of resolution results.
package display

import (
	"encoding/json"
	"fmt"
	"io"
)

// MarshalJSON marshals v pretty-printed for human consumption.
func MarshalJSON(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// OutputJSON marshals v and writes it to w followed by a newline
func OutputJSON(w io.Writer, v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
