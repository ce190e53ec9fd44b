package http

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// wantsDocumentation decides the response mode from an Accept header
// value. Documentation is chosen only when the header names text/html
// and does not also name application/json; a permissive browser accept
// list carrying both resolves to data mode, as does an empty or absent
// header. Total over all inputs.
func wantsDocumentation(accept string) bool {
	return strings.Contains(accept, echo.MIMETextHTML) &&
		!strings.Contains(accept, echo.MIMEApplicationJSON)
}
