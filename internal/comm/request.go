package comm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrInvalidRequest = errors.New("solicitud inválida")

// InvalidRequestErrPrefix starts the error message sent for a rejected body.
const InvalidRequestErrPrefix = "Solicitud inválida: "

// RequestError says why a submission was rejected. It matches
// ErrInvalidRequest with errors.Is.
type RequestError struct {
	Reason string
}

func (e *RequestError) Error() string {
	return ErrInvalidRequest.Error() + ": " + e.Reason
}

func (e *RequestError) Unwrap() error {
	return ErrInvalidRequest
}

func invalid(format string, args ...interface{}) error {
	return &RequestError{Reason: fmt.Sprintf(format, args...)}
}

// InvalidRequestMessage is the client-facing text for a rejected submission.
func InvalidRequestMessage(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return InvalidRequestErrPrefix + reqErr.Reason
	}
	return InvalidRequestErrPrefix + err.Error()
}

// SequenceRequest is the body of a round submission.
type SequenceRequest struct {
	GameID   string `json:"idJuego"`
	Pokemons []int  `json:"pokemons"`
}

// DecodeSequenceRequest parses and validates a submission. Unknown fields,
// trailing data, a blank idJuego, a missing pokemons list and non-positive
// ids are all rejected with ErrInvalidRequest.
func DecodeSequenceRequest(r io.Reader) (*SequenceRequest, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var req SequenceRequest
	if err := dec.Decode(&req); err != nil {
		return nil, invalid("%s", err)
	}
	if dec.More() {
		return nil, invalid("datos inesperados después del cuerpo")
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// DecodeSequenceData is DecodeSequenceRequest for a WSMessage payload.
func DecodeSequenceData(data json.RawMessage) (*SequenceRequest, error) {
	return DecodeSequenceRequest(bytes.NewReader(data))
}

func (r *SequenceRequest) Validate() error {
	r.GameID = strings.TrimSpace(r.GameID)
	if r.GameID == "" {
		return invalid("idJuego es obligatorio")
	}
	if r.Pokemons == nil {
		return invalid("pokemons es obligatorio")
	}
	for i, id := range r.Pokemons {
		if id <= 0 {
			return invalid("pokemons[%d] debe ser positivo", i)
		}
	}
	return nil
}
