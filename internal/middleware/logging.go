package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// LogRequest traces every request, tagged with the matched route and the
// session id when the route carries one.
func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fields := log.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"route":  routeName(r),
				"ua":     r.Header.Get("User-Agent"),
			}
			if sid, ok := mux.Vars(r)["sid"]; ok {
				fields["sid"] = sid
			}
			log.WithFields(fields).Trace(" ====> request")
			next.ServeHTTP(w, r)
		})
	}
}
