package extract

import (
	"bytes"
	"encoding/json"
)

// Marshal renders r as compact JSON without HTML escaping, so locator
// strings such as "a > b" survive verbatim.
func Marshal(r *Result) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
