package middleware

import (
	"bytes"
	"net/http"
)

// statusRecorder captures the status code and, when body is set, the
// response body.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
	body   *bytes.Buffer
}

func newStatusRecorder(w http.ResponseWriter, captureBody bool) *statusRecorder {
	rec := &statusRecorder{ResponseWriter: w}
	if captureBody {
		rec.body = &bytes.Buffer{}
	}
	return rec
}

func (rw *statusRecorder) WriteHeader(code int) {
	if rw.status == 0 {
		rw.status = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	if rw.body != nil {
		rw.body.Write(b)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func (rw *statusRecorder) Status() int {
	if rw.status == 0 {
		return http.StatusOK
	}
	return rw.status
}
