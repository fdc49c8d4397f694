package controllers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/aquaops/pond-miniapp/modules/miniapp/presentation/mappers"
	"github.com/aquaops/pond-miniapp/modules/miniapp/presentation/viewmodels"
	"github.com/aquaops/pond-miniapp/modules/miniapp/services"
	"github.com/aquaops/pond-miniapp/pkg/application"
	"github.com/aquaops/pond-miniapp/pkg/intl"
	"github.com/aquaops/pond-miniapp/pkg/middleware"
)

type UsersController struct {
	app      application.Application
	users    *services.UserAdminService
	basePath string
}

func NewUsersController(app application.Application) application.Controller {
	return &UsersController{
		app:      app,
		users:    app.Service(services.UserAdminService{}).(*services.UserAdminService),
		basePath: "/api/v1/admin/users",
	}
}

func (c *UsersController) Key() string {
	return c.basePath
}

func (c *UsersController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(
		middleware.ProvideLocalizer(c.app),
		middleware.RequireIdentity(),
	)
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}/{action}", c.Apply).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)
}

func (c *UsersController) List(w http.ResponseWriter, r *http.Request) {
	users, err := c.users.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Admin.Errors.UsersLoad")
		return
	}
	writeJSON(w, http.StatusOK, mappers.UsersToViewModels(users))
}

func (c *UsersController) Apply(w http.ResponseWriter, r *http.Request) {
	id, ok := c.userID(w, r)
	if !ok {
		return
	}
	action := services.UserAction(mux.Vars(r)["action"])
	if err := c.users.Apply(r.Context(), id, action); err != nil {
		writeServiceError(w, r, err, "Admin.Errors.UpdateFailed")
		return
	}
	writeJSON(w, http.StatusOK, viewmodels.Message{Message: intl.Localize(r.Context(), "Admin.Messages.Updated", nil)})
}

func (c *UsersController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := c.userID(w, r)
	if !ok {
		return
	}
	if err := c.users.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "Admin.Errors.DeleteFailed")
		return
	}
	writeJSON(w, http.StatusOK, viewmodels.Message{Message: intl.Localize(r.Context(), "Admin.Messages.Deleted", nil)})
}

func (c *UsersController) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeLocalized(w, r, http.StatusBadRequest, "INVALID_USER_ID", "Admin.Errors.InvalidUserID")
		return 0, false
	}
	return id, true
}
