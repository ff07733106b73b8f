package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Dan9191/finance-dashboard/internal/forecast"
	"github.com/Dan9191/finance-dashboard/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register mounts the dashboard routes
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/dashboard/data", h.DashboardData).Methods(http.MethodGet)
	r.HandleFunc("/dashboard/prediction", h.DashboardPrediction).Methods(http.MethodGet)
	r.HandleFunc("/dashboard/exchange-rates", h.ExchangeRates).Methods(http.MethodGet)
}

// DashboardData handles the income/expense breakdown for an optional date range
func (h *Handler) DashboardData(w http.ResponseWriter, r *http.Request) {
	from, err := optionalDate(r, "date_from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := optionalDate(r, "date_to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.svc.DashboardData(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard data")
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// DashboardPrediction handles the income/expense forecast for a future period
func (h *Handler) DashboardPrediction(w http.ResponseWriter, r *http.Request) {
	from, errFrom := optionalDate(r, "date_from")
	to, errTo := optionalDate(r, "date_to")
	if errFrom != nil || errTo != nil || from == nil || to == nil {
		h.log.Debugf("Rejected prediction request: %q", r.URL.RawQuery)
		writeError(w, http.StatusBadRequest, "Date range required")
		return
	}

	result, err := h.svc.Predict(r.Context(), *from, *to)
	if errors.Is(err, forecast.ErrPeriodRequired) {
		writeError(w, http.StatusBadRequest, "Date range required")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Prediction calculation failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ExchangeRates handles current EUR/USD/RUB cross rates
func (h *Handler) ExchangeRates(w http.ResponseWriter, r *http.Request) {
	rates := h.svc.ExchangeRates(r.Context(), r.URL.Query().Get("base"))
	writeJSON(w, http.StatusOK, rates)
}

func optionalDate(r *http.Request, key string) (*time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, errors.New("invalid " + key + ": expected YYYY-MM-DD")
	}
	return &t, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
