package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gloworm-vision/colorlight/color"
)

// maxBodyBytes caps request bodies, anything larger is a malformed request.
const maxBodyBytes = 4096

// decodeJSON decodes a request body, returning the status to respond with
// when it can't. Syntax errors are a 400, values of the wrong type a 422.
func decodeJSON(r io.Reader, v interface{}) (int, error) {
	err := json.NewDecoder(r).Decode(v)
	if err == nil {
		return 0, nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return http.StatusUnprocessableEntity, err
	}

	return http.StatusBadRequest, err
}

// colorRequest uses pointers so missing channels can be told apart from 0.
type colorRequest struct {
	Red   *uint8 `json:"red"`
	Green *uint8 `json:"green"`
	Blue  *uint8 `json:"blue"`
}

func decodeColor(r io.Reader) (color.Color, int, error) {
	var body colorRequest
	if status, err := decodeJSON(r, &body); err != nil {
		return color.Color{}, status, err
	}

	if body.Red == nil || body.Green == nil || body.Blue == nil {
		return color.Color{}, http.StatusUnprocessableEntity, fmt.Errorf("color needs red, green and blue")
	}

	return color.Color{Red: *body.Red, Green: *body.Green, Blue: *body.Blue}, 0, nil
}
