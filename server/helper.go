package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

var (
	ErrCouldNotReadBody  = errors.New("could not read request body")
	ErrCouldNotParseBody = errors.New("could not parse request body")
)

// httpResp is the envelope of every JSON response.
type httpResp struct {
	Status  int    `json:"status"`
	IsError bool   `json:"is_error"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func getBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return ErrCouldNotReadBody
	}
	if err := json.Unmarshal(body, v); err != nil {
		return ErrCouldNotParseBody
	}
	return nil
}

func sendResponse(rw http.ResponseWriter, resp httpResp) {
	out, err := json.Marshal(resp)
	if err != nil {
		rw.Header().Set("Content-Type", "application/json; charset=utf-8")
		rw.WriteHeader(http.StatusInternalServerError)
		rw.Write([]byte(`{"status": 500, "is_error": true, "error": "could not marshal response"}`))
		return
	}
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(resp.Status)
	rw.Write(out)
}

func sendData(rw http.ResponseWriter, status int, data any) {
	sendResponse(rw, httpResp{Status: status, Data: data})
}

func sendError(rw http.ResponseWriter, status int, err error) {
	sendResponse(rw, httpResp{Status: status, IsError: true, Error: err.Error()})
}
