package response

import (
	"bytes"
	"net/http"
	"sync"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"github.com/benedict-erwin/lokiquery/internal/constants"
)

// maxPooledBuffer keeps pages of large query results out of the pool
const maxPooledBuffer = 64 * 1024

var bufferPool = sync.Pool{
	New: func() interface{} {
		return &bytes.Buffer{}
	},
}

// Response is the envelope of every gateway answer
type Response struct {
	Success   bool   `json:"success"`
	Code      int    `json:"code"`
	Data      any    `json:"data"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func write(c echo.Context, status int, r Response) error {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		if buf.Cap() < maxPooledBuffer {
			bufferPool.Put(buf)
		}
	}()

	r.RequestID = constants.GetRequestID(c)
	if err := json.NewEncoder(buf).Encode(r); err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	c.Response().WriteHeader(status)
	_, err := c.Response().Write(buf.Bytes())
	return err
}

// Success returns a successful response with data
func Success(c echo.Context, data any) error {
	return write(c, http.StatusOK, Response{
		Success: true,
		Code:    constants.CodeSuccess,
		Data:    data,
		Message: "Successful",
	})
}

// Accepted acknowledges work handed to the queue
func Accepted(c echo.Context, data any) error {
	return write(c, http.StatusAccepted, Response{
		Success: true,
		Code:    constants.CodeSuccess,
		Data:    data,
		Message: "Accepted",
	})
}

// General returns a customizable response
func General(c echo.Context, httpStatus int, code int, data any, message string) error {
	return write(c, httpStatus, Response{
		Success: httpStatus < 400,
		Code:    code,
		Data:    data,
		Message: message,
	})
}

// FailWithCode returns an error response using standardized error code
func FailWithCode(c echo.Context, code int) error {
	return FailWithCodeAndMessage(c, code, constants.GetErrorMessage(code))
}

// FailWithCodeAndMessage returns an error response with custom message
func FailWithCodeAndMessage(c echo.Context, code int, message string) error {
	return FailWithCodeAndData(c, code, nil, message)
}

// FailWithCodeAndData returns an error response that still carries data,
// e.g. the empty page of a failed query
func FailWithCodeAndData(c echo.Context, code int, data any, message string) error {
	return write(c, constants.GetHTTPStatusFromCode(code), Response{
		Success: false,
		Code:    code,
		Data:    data,
		Message: message,
	})
}
