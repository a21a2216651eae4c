package utilities

import "encoding/json"

// Serializable marks DTOs that know how to render themselves for a
// message queue or log sink.
type Serializable interface {
	Serialize() ([]byte, error)
}

// Serialize is the default Serializable implementation body: plain JSON
// marshaling of the DTO.
func Serialize[T any](content T) ([]byte, error) {
	return json.Marshal(content)
}
