package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/DioGolang/GoPeople/internal/application/model"
	"github.com/DioGolang/GoPeople/internal/application/port/outbound"
	"github.com/DioGolang/GoPeople/internal/application/usecase/person"
	"github.com/DioGolang/GoPeople/internal/domain/entity"
	"github.com/DioGolang/GoPeople/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// ServiceResolver hands out a person service bound to the persistence
// context visible from ctx.
type ServiceResolver interface {
	PersonService(ctx context.Context) (person.Service, error)
}

type PersonRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type Person struct {
	Services ServiceResolver
	Validate *validator.Validate
	Log      logger.Logger
}

func NewPersonHandler(services ServiceResolver, log logger.Logger) *Person {
	return &Person{
		Services: services,
		Validate: validator.New(validator.WithRequiredStructEnabled()),
		Log:      log,
	}
}

func (h *Person) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *Person) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	out, err := svc.Add(r.Context(), model.PersonModel{Name: req.Name})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Person) List(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	var (
		out []model.PersonModel
		err error
	)
	if name := r.URL.Query().Get("name"); name != "" {
		out, err = svc.Find(r.Context(), func(p entity.Person) bool { return p.Name == name })
	} else {
		out, err = svc.GetAll(r.Context())
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Person) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	out, err := svc.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if out == nil {
		http.Error(w, "person not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Person) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	out, err := svc.Update(r.Context(), model.PersonModel{ID: id, Name: req.Name})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Person) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	if err := svc.Delete(r.Context(), model.PersonModel{ID: id}); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Person) decode(w http.ResponseWriter, r *http.Request) (PersonRequest, bool) {
	var req PersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return req, false
	}
	if err := h.Validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (h *Person) service(w http.ResponseWriter, r *http.Request) (person.Service, bool) {
	svc, err := h.Services.PersonService(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return svc, true
}

func (h *Person) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		http.Error(w, "person not found", http.StatusNotFound)
	case errors.Is(err, entity.ErrIDIsRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, outbound.ErrPersistence):
		h.Log.Error(r.Context(), "persistence failure", logger.WithError(err))
		http.Error(w, "could not persist changes", http.StatusInternalServerError)
	default:
		h.Log.Error(r.Context(), "request failed", logger.WithError(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
