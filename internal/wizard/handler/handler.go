// Package handler is the thin HTTP layer over the wizard service. It
// delegates to the service without embedding business logic so transport
// concerns remain isolated.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"permitdesk/internal/platform/middleware"
	"permitdesk/internal/submit"
	"permitdesk/internal/wizard/models"
	"permitdesk/internal/wizard/service"
	dErrors "permitdesk/pkg/domain-errors"
	"permitdesk/pkg/platform/httputil"
)

// Service defines the wizard operations the HTTP layer needs.
// It returns domain objects, not HTTP response DTOs.
type Service interface {
	State() models.ApplicationState
	Next(ctx context.Context) (service.NavResult, error)
	Previous(ctx context.Context) (service.NavResult, error)
	GoToStep(ctx context.Context, step int) (service.NavResult, error)
	UpdateStep(ctx context.Context, step int, patch models.StepPatch) error
	Submit(ctx context.Context) (submit.Receipt, error)
	SaveNow(ctx context.Context) error
}

// LanguageStore persists the UI language preference for the localization
// collaborator.
type LanguageStore interface {
	SaveLanguage(ctx context.Context, lang string) error
	LoadLanguage(ctx context.Context) (string, error)
}

type Handler struct {
	service  Service
	language LanguageStore
	logger   *slog.Logger
}

func New(service Service, language LanguageStore, logger *slog.Logger) *Handler {
	return &Handler{service: service, language: language, logger: logger}
}

// Register mounts the wizard routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/catalog", h.HandleCatalog)
	r.Get("/application", h.HandleState)
	r.Post("/application/next", h.HandleNext)
	r.Post("/application/previous", h.HandlePrevious)
	r.Post("/application/step/{step}", h.HandleGoToStep)
	r.Put("/application/step/{step}", h.HandleUpdateStep)
	r.Post("/application/draft", h.HandleSaveDraft)
	r.Post("/application/submit", h.HandleSubmit)
	r.Get("/language", h.HandleGetLanguage)
	r.Put("/language", h.HandleSetLanguage)
}

// HandleCatalog returns the fixed application-type catalog and parish list.
func (h *Handler) HandleCatalog(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, CatalogResponse{
		ApplicationTypes: models.Catalog(),
		Parishes:         models.Parishes,
	})
}

// HandleState returns the aggregate snapshot.
func (h *Handler) HandleState(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, toStateResponse(h.service.State()))
}

// HandleNext advances the wizard. Validation failures come back as a 400
// with the field map; the step does not change.
func (h *Handler) HandleNext(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Next(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeNav(w, res)
}

// HandlePrevious steps back.
func (h *Handler) HandlePrevious(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Previous(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeNav(w, res)
}

// HandleGoToStep jumps to an arbitrary step, e.g. "edit from review".
func (h *Handler) HandleGoToStep(w http.ResponseWriter, r *http.Request) {
	step, ok := h.stepParam(w, r)
	if !ok {
		return
	}
	res, err := h.service.GoToStep(r.Context(), step)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeNav(w, res)
}

// HandleUpdateStep merges a partial update into one step's data slice and
// returns the refreshed snapshot (including the calculating flag).
func (h *Handler) HandleUpdateStep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	step, ok := h.stepParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateStepRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	if err := h.service.UpdateStep(ctx, step, req.Patch()); err != nil {
		h.logger.WarnContext(ctx, "update step failed",
			"error", err,
			"step", step,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStateResponse(h.service.State()))
}

// HandleSaveDraft persists the draft immediately (explicit user action).
func (h *Handler) HandleSaveDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SaveNow(r.Context()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStateResponse(h.service.State()))
}

// HandleSubmit finishes the application. Validation failures carry the
// field map so the review screen can send the citizen back to fix them.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	receipt, err := h.service.Submit(ctx)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			st := h.service.State()
			httputil.WriteJSON(w, http.StatusBadRequest, NavResponse{
				Step:             st.CurrentStep,
				ValidationErrors: st.ValidationErrors,
			})
			return
		}
		h.logger.ErrorContext(ctx, "submission failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SubmitResponse{Receipt: receipt})
}

// HandleGetLanguage returns the stored language preference, defaulting to "en".
func (h *Handler) HandleGetLanguage(w http.ResponseWriter, r *http.Request) {
	lang, err := h.language.LoadLanguage(r.Context())
	if err != nil {
		h.logger.WarnContext(r.Context(), "load language failed", "error", err)
		lang = ""
	}
	if lang == "" {
		lang = "en"
	}
	httputil.WriteJSON(w, http.StatusOK, LanguageResponse{Language: lang})
}

// HandleSetLanguage stores the language preference.
func (h *Handler) HandleSetLanguage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[SetLanguageRequest](w, r, h.logger, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	if err := h.language.SaveLanguage(ctx, req.Language); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to store language preference"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LanguageResponse{Language: req.Language})
}

func (h *Handler) writeNav(w http.ResponseWriter, res service.NavResult) {
	status := http.StatusOK
	if len(res.ValidationErrors) > 0 {
		status = http.StatusBadRequest
	}
	httputil.WriteJSON(w, status, NavResponse{
		Step:             res.Step,
		ValidationErrors: res.ValidationErrors,
	})
}

func (h *Handler) stepParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid step"))
		return 0, false
	}
	return step, true
}
