package controllers

import (
	"net/http"

	"github.com/aquaops/pond-miniapp/pkg/httpapi"
	"github.com/aquaops/pond-miniapp/pkg/routing"
)

// NotFound answers unmatched routes: JSON for API paths, plain text
// elsewhere.
func NotFound(classifier *routing.Classifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if classifier == nil || classifier.IsAPI(r.URL.Path) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "not found", map[string]string{"path": r.URL.Path})
			return
		}
		http.NotFound(w, r)
	}
}

func MethodNotAllowed(classifier *routing.Classifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if classifier == nil || classifier.IsAPI(r.URL.Path) {
			_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", map[string]string{"method": r.Method})
			return
		}
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}
