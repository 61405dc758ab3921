package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// BodyLimit rejects request bodies larger than defaultLimit bytes. Attachment
// upload endpoints get the larger uploadLimit since they carry file content.
func BodyLimit(defaultLimit, uploadLimit int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limit := defaultLimit
			if isUploadPath(c.Request()) {
				limit = uploadLimit
			}

			req := c.Request()
			if req.ContentLength > limit {
				return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
			}
			req.Body = http.MaxBytesReader(c.Response(), req.Body, limit)

			err := next(c)
			if err != nil && strings.Contains(err.Error(), "http: request body too large") {
				return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
			}
			return err
		}
	}
}

func isUploadPath(req *http.Request) bool {
	if req.Method != http.MethodPost {
		return false
	}
	return strings.HasSuffix(req.URL.Path, "/attachments")
}
