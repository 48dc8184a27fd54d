package router

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "marketplace/internal/errors"
)

// VersionKey is the echo context key holding the negotiated API version.
const VersionKey = "api_version"

// CurrentVersion is the only version served today; the matcher still
// resolves a number so handler variants can branch when a v2 lands.
const CurrentVersion = 1

var vendorAccept = regexp.MustCompile(`^application/vnd\.marketplace\.v(\d+)(?:\+json)?$`)

// APIVersion negotiates the API version from the Accept header before
// dispatch. A vendor media type pins an explicit version; anything else,
// including an absent header, falls back to the current version.
func APIVersion() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			version := CurrentVersion
			for _, accept := range strings.Split(c.Request().Header.Get(echo.HeaderAccept), ",") {
				media := strings.TrimSpace(strings.SplitN(accept, ";", 2)[0])
				m := vendorAccept.FindStringSubmatch(media)
				if m == nil {
					continue
				}
				v, err := strconv.Atoi(m[1])
				if err != nil || v != CurrentVersion {
					return c.JSON(http.StatusNotAcceptable, apperrors.Base("unsupported API version"))
				}
				version = v
				break
			}
			c.Set(VersionKey, version)
			return next(c)
		}
	}
}
