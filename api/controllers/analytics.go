package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/boosthq/boosthq-backend/api/responses"
	"github.com/boosthq/boosthq-backend/api/validators"
	internalanalytics "github.com/boosthq/boosthq-backend/internal/analytics"
	pkgerrors "github.com/boosthq/boosthq-backend/pkg/errors"
	"github.com/boosthq/boosthq-backend/pkg/logger"
)

// AnalyticsDaily returns one day of order and revenue aggregates. The
// date query parameter defaults to today (UTC).
func AnalyticsDaily(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		date, err := validators.ParseQueryDate(r, "date", time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.Daily(r.Context(), actor, date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dayStatsView(*stats))
	}
}

// AnalyticsWeekly returns seven days of aggregates ending at end_date,
// oldest day first.
func AnalyticsWeekly(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		endDate, err := validators.ParseQueryDate(r, "end_date", time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		days, err := svc.Weekly(r.Context(), actor, endDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]DayStatsView, 0, len(days))
		for _, day := range days {
			views = append(views, dayStatsView(day))
		}
		responses.WriteSuccess(w, views)
	}
}

// AnalyticsWorkers returns per-worker order totals and tracked hours.
func AnalyticsWorkers(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		rows, err := svc.WorkerStats(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, workerStatsViews(rows))
	}
}

// WorkerSessions returns the tracked work sessions of one user.
func WorkerSessions(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		userID, err := validators.ParseUUIDParam(chi.URLParam(r, "userId"), "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessions, err := svc.Sessions(r.Context(), actor, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sessionViews(sessions))
	}
}
