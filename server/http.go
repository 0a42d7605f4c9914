package server

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

var (
	malformedRequest = errorResponse{Status: "error", Message: "Malformed request"}
	resourceNotFound = errorResponse{Status: "error", Message: "Resource not found"}
)

// respond encodes the data to JSON and responds with it and the http code. An
// error is sent as an errorResponse carrying its message.
func respond(w http.ResponseWriter, data interface{}, httpCode int) {
	var resp interface{}
	if v, ok := data.(error); ok {
		resp = errorResponse{Status: "error", Message: v.Error()}
	} else {
		resp = data
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)

	if resp != nil {
		_ = json.NewEncoder(w).Encode(resp)
	}
}
