package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Rubemlrm/jogging-tracker/internal/auth"
)

// ResourceReader is implemented by every resource controller.
type ResourceReader interface {
	List(w http.ResponseWriter, r *http.Request)
	Retrieve(w http.ResponseWriter, r *http.Request)
}

// ResourceWriter is implemented by controllers whose records can be changed over HTTP.
// Controllers without it are read-only and answer write verbs with 405.
type ResourceWriter interface {
	Create(w http.ResponseWriter, r *http.Request)
	Replace(w http.ResponseWriter, r *http.Request)
	Patch(w http.ResponseWriter, r *http.Request)
	Destroy(w http.ResponseWriter, r *http.Request)
}

// keyParam is the route parameter carrying the lookup key (id, username or title).
const keyParam = "key"

type resource struct {
	path       string
	controller ResourceReader
	// anonymousCreate lets unauthenticated callers POST to the collection.
	anonymousCreate bool
	extend          func(r chi.Router, mw auth.Middleware)
}

func mountResource(router chi.Router, mw auth.Middleware, res resource) {
	router.Route(res.path, func(r chi.Router) {
		r.With(mw.Required).Get("/", res.controller.List)
		r.With(mw.Required).Get("/{key}", res.controller.Retrieve)

		if writer, ok := res.controller.(ResourceWriter); ok {
			createAuth := mw.Required
			if res.anonymousCreate {
				createAuth = mw.Optional
			}
			r.With(createAuth).Post("/", writer.Create)
			r.With(mw.Required).Put("/{key}", writer.Replace)
			r.With(mw.Required).Patch("/{key}", writer.Patch)
			r.With(mw.Required).Delete("/{key}", writer.Destroy)
		}

		if res.extend != nil {
			res.extend(r, mw)
		}
	})
}

func lookupKey(r *http.Request) string {
	return chi.URLParam(r, keyParam)
}
