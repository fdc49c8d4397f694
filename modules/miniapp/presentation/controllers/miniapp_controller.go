package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/aggregates/draft"
	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/entities/formvariant"
	"github.com/aquaops/pond-miniapp/modules/miniapp/presentation/controllers/dtos"
	"github.com/aquaops/pond-miniapp/modules/miniapp/presentation/mappers"
	"github.com/aquaops/pond-miniapp/modules/miniapp/presentation/viewmodels"
	"github.com/aquaops/pond-miniapp/modules/miniapp/services"
	"github.com/aquaops/pond-miniapp/pkg/application"
	"github.com/aquaops/pond-miniapp/pkg/composables"
	"github.com/aquaops/pond-miniapp/pkg/middleware"
)

type MiniAppController struct {
	app         application.Application
	catalogs    *services.CatalogService
	drafts      *services.DraftService
	submissions *services.SubmissionService
	identity    *services.IdentityService
	basePath    string
}

func NewMiniAppController(app application.Application) application.Controller {
	return &MiniAppController{
		app:         app,
		catalogs:    app.Service(services.CatalogService{}).(*services.CatalogService),
		drafts:      app.Service(services.DraftService{}).(*services.DraftService),
		submissions: app.Service(services.SubmissionService{}).(*services.SubmissionService),
		identity:    app.Service(services.IdentityService{}).(*services.IdentityService),
		basePath:    "/api/v1",
	}
}

func (c *MiniAppController) Key() string {
	return c.basePath
}

func (c *MiniAppController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.ProvideLocalizer(c.app))

	router.HandleFunc("/catalogs", c.Catalogs).Methods(http.MethodGet)
	router.HandleFunc("/variants", c.Variants).Methods(http.MethodGet)

	protected := router.NewRoute().Subrouter()
	protected.Use(middleware.RequireIdentity())
	protected.HandleFunc("/me", c.Me).Methods(http.MethodGet)
	protected.HandleFunc("/shared", c.GetShared).Methods(http.MethodGet)
	protected.HandleFunc("/shared", c.SetShared).Methods(http.MethodPut, http.MethodPost)
	protected.HandleFunc("/forms/{variant}", c.GetDraft).Methods(http.MethodGet)
	protected.HandleFunc("/forms/{variant}/fields/{field}", c.SetField).Methods(http.MethodPut)
	protected.HandleFunc("/forms/{variant}/rows/{row:[0-9]+}/blur", c.BlurRow).Methods(http.MethodPost)
	protected.HandleFunc("/forms/{variant}/rows/{row:[0-9]+}/{field}", c.UpdateRow).Methods(http.MethodPut)
	protected.HandleFunc("/forms/{variant}/rows/{row:[0-9]+}", c.RemoveRow).Methods(http.MethodDelete)
	protected.HandleFunc("/forms/{variant}/reset", c.Reset).Methods(http.MethodPost)
	protected.HandleFunc("/forms/{variant}/submit", c.Submit).Methods(http.MethodPost)
}

func (c *MiniAppController) Me(w http.ResponseWriter, r *http.Request) {
	identity, err := composables.UseInitData(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "")
		return
	}
	user, err := c.identity.Current(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, mappers.MeToViewModel(identity, user, c.identity.IsAdmin(r.Context(), user)))
}

func (c *MiniAppController) Catalogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mappers.CatalogsToViewModel(r.Context(), c.catalogs.All(r.Context())))
}

func (c *MiniAppController) Variants(w http.ResponseWriter, r *http.Request) {
	all := formvariant.All()
	out := make([]viewmodels.Variant, 0, len(all))
	for _, v := range all {
		out = append(out, mappers.VariantToViewModel(r.Context(), v))
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *MiniAppController) GetShared(w http.ResponseWriter, r *http.Request) {
	shared, err := c.drafts.Shared(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, mappers.SharedToViewModel(shared))
}

func (c *MiniAppController) SetShared(w http.ResponseWriter, r *http.Request) {
	dto, err := decodeBody(r, &dtos.SharedDTO{})
	if err != nil {
		writeCoded(w, r, http.StatusBadRequest, errBadRequest)
		return
	}
	if errs, ok := dto.Ok(r.Context()); !ok {
		validationFailed(w, r, errs)
		return
	}
	shared, err := c.drafts.SetShared(r.Context(), dto.ToService())
	if err != nil {
		writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, mappers.SharedToViewModel(shared))
}

func (c *MiniAppController) GetDraft(w http.ResponseWriter, r *http.Request) {
	d, err := c.drafts.Get(r.Context(), mux.Vars(r)["variant"])
	c.respondDraft(w, r, d, err)
}

func (c *MiniAppController) SetField(w http.ResponseWriter, r *http.Request) {
	dto, ok := c.fieldValue(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	d, err := c.drafts.SetField(r.Context(), vars["variant"], vars["field"], dto.Value)
	c.respondDraft(w, r, d, err)
}

func (c *MiniAppController) UpdateRow(w http.ResponseWriter, r *http.Request) {
	id, ok := rowID(r)
	if !ok {
		writeCoded(w, r, http.StatusBadRequest, errBadRequest)
		return
	}
	dto, ok := c.fieldValue(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	d, err := c.drafts.UpdateRow(r.Context(), vars["variant"], id, vars["field"], dto.Value)
	c.respondDraft(w, r, d, err)
}

func (c *MiniAppController) BlurRow(w http.ResponseWriter, r *http.Request) {
	id, ok := rowID(r)
	if !ok {
		writeCoded(w, r, http.StatusBadRequest, errBadRequest)
		return
	}
	d, err := c.drafts.BlurRow(r.Context(), mux.Vars(r)["variant"], id)
	c.respondDraft(w, r, d, err)
}

func (c *MiniAppController) RemoveRow(w http.ResponseWriter, r *http.Request) {
	id, ok := rowID(r)
	if !ok {
		writeCoded(w, r, http.StatusBadRequest, errBadRequest)
		return
	}
	d, err := c.drafts.RemoveRow(r.Context(), mux.Vars(r)["variant"], id)
	c.respondDraft(w, r, d, err)
}

func (c *MiniAppController) Reset(w http.ResponseWriter, r *http.Request) {
	d, err := c.drafts.Reset(r.Context(), mux.Vars(r)["variant"])
	c.respondDraft(w, r, d, err)
}

func (c *MiniAppController) Submit(w http.ResponseWriter, r *http.Request) {
	res, err := c.submissions.Submit(r.Context(), mux.Vars(r)["variant"])
	if err != nil {
		writeServiceError(w, r, err, "Forms.Messages.SendFailed")
		return
	}
	shared, err := c.drafts.Shared(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, viewmodels.Submission{
		Message: res.Message,
		Draft:   mappers.DraftToViewModel(res.Draft, shared),
	})
}

func (c *MiniAppController) fieldValue(w http.ResponseWriter, r *http.Request) (*dtos.FieldValueDTO, bool) {
	dto, err := decodeBody(r, &dtos.FieldValueDTO{})
	if err != nil {
		writeCoded(w, r, http.StatusBadRequest, errBadRequest)
		return nil, false
	}
	if errs, ok := dto.Ok(r.Context()); !ok {
		validationFailed(w, r, errs)
		return nil, false
	}
	return dto, true
}

func (c *MiniAppController) respondDraft(w http.ResponseWriter, r *http.Request, d draft.Draft, err error) {
	if err != nil {
		writeServiceError(w, r, err, "")
		return
	}
	shared, err := c.drafts.Shared(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, mappers.DraftToViewModel(d, shared))
}
