package web

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// NewH2CServer wraps the echo handler so internal mesh clients can speak
// HTTP/2 without TLS.
func NewH2CServer(addr string, e *echo.Echo) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: h2c.NewHandler(e, &http2.Server{}),
	}
}
