package arbor

import "encoding/json"

// Bodies are plain JSON payloads: a declared failure's body is serialized
// exactly like a success body, with the status code as the discriminator.
// Only this layer's own errors use the {code, message} envelope.

// encodeJSON writes v as JSON to w.
func encodeJSON(w jsonWriter, v any) error {
	return json.NewEncoder(w).Encode(v)
}

// jsonWriter is satisfied by http.ResponseWriter and allows testing.
type jsonWriter interface {
	Write([]byte) (int, error)
}
