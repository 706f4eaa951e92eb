package httpresponse

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Header is one response header. Headers live in a slice, not a map, so the
// order they were added in is the order they are written in.
type Header struct {
	Name  string
	Value string
}

// Response describes an HTTP response independently of the framework that
// will write it. The status and headers are fixed once built. A nil Body
// means no body at all, not an empty JSON document.
type Response struct {
	Status  int
	Headers []Header
	Body    json.RawMessage
}

// Builder accumulates a response. It is a value type: AddHeader returns a
// new builder rather than mutating the receiver, so a partially built
// response can be shared and extended from more than one call site.
type Builder struct {
	status  int
	headers []Header
}

// New starts a builder for the given status code.
func New(status int) Builder {
	return Builder{status: status}
}

// AddHeader returns a copy of b with the header appended.
func (b Builder) AddHeader(name, value string) Builder {
	headers := make([]Header, len(b.headers), len(b.headers)+1)
	copy(headers, b.headers)
	b.headers = append(headers, Header{Name: name, Value: value})
	return b
}

// Finish builds a response with no body.
func (b Builder) Finish() *Response {
	return &Response{Status: b.status, Headers: b.headers}
}

// JSON builds a response with v marshalled as the body. A body that cannot
// be marshalled is a programming error rather than a reportable HTTP
// outcome, so it panics.
func (b Builder) JSON(v any) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("httpresponse: cannot marshal %T body: %s", v, err))
	}
	return &Response{Status: b.status, Headers: b.headers, Body: body}
}

// OK wraps v in a 200 response, the shape nearly every success path wants.
func OK(v any) *Response {
	return New(http.StatusOK).JSON(v)
}

// Write sends the response on c, headers first in the order they were
// added. Writing is terminal: nothing inspects or alters the response
// afterwards.
func (r *Response) Write(c *gin.Context) {
	for _, h := range r.Headers {
		c.Header(h.Name, h.Value)
	}
	if r.Body == nil {
		c.Status(r.Status)
		return
	}
	c.Data(r.Status, "application/json", r.Body)
}
