package checklist

import "encoding/json"

// Item is a single checklist line with a done flag.
type Item struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// MarshalItems encodes items for a JSONB column. A nil slice encodes as [].
func MarshalItems(items []Item) []byte {
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		// Item contains only a string and a bool; marshalling cannot fail.
		return []byte("[]")
	}
	return data
}

// UnmarshalItems decodes a JSONB column value. Nil or malformed input yields
// an empty list rather than an error.
func UnmarshalItems(raw []byte) []Item {
	if len(raw) == 0 {
		return []Item{}
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return []Item{}
	}
	return items
}
