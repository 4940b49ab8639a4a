package response

import (
	"encoding/xml"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/yungbote/employee-registry/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message" xml:"message"`
	Code    string `json:"code,omitempty" xml:"code,omitempty"`
}

type ErrorEnvelope struct {
	XMLName xml.Name `json:"-" xml:"ErrorResponse"`
	Error   APIError `json:"error" xml:"error"`
}

// Message is the body of informational responses.
type Message struct {
	XMLName xml.Name `json:"-" xml:"Message"`
	Message string   `json:"message" xml:"message"`
}

// Int wraps a bare integer so it can be rendered as XML.
type Int struct {
	XMLName xml.Name `xml:"int"`
	Value   int64    `xml:",chardata"`
}

var offered = []string{binding.MIMEJSON, binding.MIMEXML, binding.MIMEXML2}

// Negotiate renders jsonData or xmlData depending on the Accept header.
// JSON is used when the client states no usable preference.
func Negotiate(c *gin.Context, status int, jsonData, xmlData any) {
	switch c.NegotiateFormat(offered...) {
	case binding.MIMEXML, binding.MIMEXML2:
		c.XML(status, xmlData)
	default:
		c.JSON(status, jsonData)
	}
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	env := ErrorEnvelope{Error: APIError{Message: msg, Code: code}}
	Negotiate(c, status, env, env)
}

// RespondAPIError unwraps *apierr.Error; anything else becomes a 500.
func RespondAPIError(c *gin.Context, err error) {
	if ae, ok := apierr.As(err); ok {
		RespondError(c, apierr.Status(ae), ae.Code, ae)
		return
	}
	RespondError(c, http.StatusInternalServerError, "internal", err)
}

func RespondOK(c *gin.Context, payload any) {
	Negotiate(c, http.StatusOK, payload, payload)
}

func RespondMessage(c *gin.Context, status int, msg string) {
	body := Message{Message: msg}
	Negotiate(c, status, body, body)
}
