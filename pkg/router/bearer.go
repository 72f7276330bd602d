package router

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"aif/pkg/errutil"
	"aif/pkg/httputil"
)

var ErrInvalidCronSecret = errors.New("invalid cron secret")

// bearerMiddleware guards machine-to-machine routes with a shared secret,
// e.g. the scheduler hitting the scheduled-campaign trigger.
type bearerMiddleware struct {
	secret string
}

func NewBearerMiddleware(secret string) Middleware {
	return &bearerMiddleware{secret: secret}
}

func (m *bearerMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || m.secret == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(m.secret)) != 1 {
			httputil.ReturnServerResponse(w, nil, errutil.UnauthorizedError(ErrInvalidCronSecret))
			return
		}

		next.ServeHTTP(w, r)
	})
}
