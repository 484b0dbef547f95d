package middleware

// identity.go turns the claims stored by JWTAuth into a model.Actor. JSON
// numbers decode as float64, so the subject may arrive as a number or a
// string depending on who minted the token.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// ActorFrom returns the authenticated caller. A request without valid claims
// yields the zero Actor, which every policy check rejects.
func ActorFrom(c echo.Context) model.Actor {
	role, _ := c.Get(CtxRole).(string)
	return model.Actor{UserID: subject(c.Get(CtxUserID)), Role: role}
}

func subject(v interface{}) uint64 {
	switch t := v.(type) {
	case float64:
		if t > 0 {
			return uint64(t)
		}
	case int64:
		if t > 0 {
			return uint64(t)
		}
	case int:
		if t > 0 {
			return uint64(t)
		}
	case uint64:
		return t
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// userKey identifies the caller for rate limiting, "anon" when unknown.
func userKey(c echo.Context) string {
	if id := subject(c.Get(CtxUserID)); id != 0 {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
