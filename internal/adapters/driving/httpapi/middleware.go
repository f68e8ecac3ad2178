package httpapi

import "net/http"

// loggingResponseWriter captures the status code written so ServeHTTP can
// log it after the handler returns.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
}

func (w *loggingResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
