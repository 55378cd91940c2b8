package ecode

import "net/http"

// Business codes. Values below 1000 mirror HTTP status codes.
const (
	OK         = 0
	RequestErr = http.StatusBadRequest
	NotFound   = http.StatusNotFound
	NotAllowed = http.StatusMethodNotAllowed
	ServerErr  = http.StatusInternalServerError
)

var texts = map[int]string{
	OK: "ok",
}

// Text returns the text for a code, falling back to the HTTP status text.
func Text(code int) string {
	if text, ok := texts[code]; ok {
		return text
	}
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "unknown error"
}
