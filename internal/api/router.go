// Package api assembles the HTTP routers for the main server and the
// stats server.
package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/katesim/explore-events/internal/api/handlers"
	"github.com/katesim/explore-events/internal/api/middleware"
	"github.com/katesim/explore-events/internal/config"
	"github.com/katesim/explore-events/internal/domain/categories"
	"github.com/katesim/explore-events/internal/domain/comments"
	"github.com/katesim/explore-events/internal/domain/compilations"
	"github.com/katesim/explore-events/internal/domain/events"
	"github.com/katesim/explore-events/internal/domain/requests"
	"github.com/katesim/explore-events/internal/domain/users"
	"github.com/katesim/explore-events/internal/metrics"
	"github.com/katesim/explore-events/internal/stats"
	"github.com/katesim/explore-events/internal/storage/postgres"
)

const statsAppName = "explore-events"

// NewRouter wires the main server: domain services over the store, the
// handler set, and the middleware chain.
func NewRouter(cfg config.Config, logger zerolog.Logger, pool *pgxpool.Pool, store *postgres.Store) http.Handler {
	eventsService := events.NewService(store.Events(), events.ModerationConfig{
		MinLeadTime:        cfg.Moderation.MinLeadTime,
		MinPublishLeadTime: cfg.Moderation.MinPublishLeadTime,
	})
	requestsService := requests.NewService(store)
	usersService := users.NewService(store.Users())
	categoriesService := categories.NewService(store.Categories())
	compilationsService := compilations.NewService(store.Compilations())
	commentsService := comments.NewService(store.Comments(), store.Events())
	statsClient := stats.NewClient(cfg.Stats.BaseURL, statsAppName, cfg.Stats.Timeout)

	eventsHandler := handlers.NewEventsHandler(eventsService, usersService, categoriesService, statsClient, cfg.Environment)
	requestsHandler := handlers.NewRequestsHandler(requestsService, usersService, cfg.Environment)
	usersHandler := handlers.NewUsersHandler(usersService, cfg.Environment)
	categoriesHandler := handlers.NewCategoriesHandler(categoriesService, cfg.Environment)
	compilationsHandler := handlers.NewCompilationsHandler(compilationsService, cfg.Environment)
	commentsHandler := handlers.NewCommentsHandler(commentsService, cfg.Environment)

	mux := http.NewServeMux()
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(pool))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// Public surface.
	mux.Handle("/events", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.PublicList),
	}))
	mux.Handle("/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.PublicGet),
	}))
	mux.Handle("/events/{id}/comments", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(commentsHandler.ListByEvent),
	}))
	mux.Handle("/categories", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(categoriesHandler.List),
	}))
	mux.Handle("/categories/{catId}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(categoriesHandler.Get),
	}))
	mux.Handle("/compilations", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(compilationsHandler.List),
	}))
	mux.Handle("/compilations/{compId}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(compilationsHandler.Get),
	}))

	// Owner surface.
	mux.Handle("/users/{userId}/events", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(eventsHandler.ListByOwner),
		http.MethodPost: http.HandlerFunc(eventsHandler.Create),
	}))
	mux.Handle("/users/{userId}/events/{eventId}", methodMux(map[string]http.Handler{
		http.MethodGet:   http.HandlerFunc(eventsHandler.GetByOwner),
		http.MethodPatch: http.HandlerFunc(eventsHandler.UpdateByOwner),
	}))
	mux.Handle("/users/{userId}/events/{eventId}/requests", methodMux(map[string]http.Handler{
		http.MethodGet:   http.HandlerFunc(requestsHandler.ListForEvent),
		http.MethodPatch: http.HandlerFunc(requestsHandler.UpdateStatus),
	}))
	mux.Handle("/users/{userId}/events/{eventId}/comments", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(commentsHandler.Create),
	}))
	mux.Handle("/users/{userId}/requests", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(requestsHandler.ListByRequester),
		http.MethodPost: http.HandlerFunc(requestsHandler.Create),
	}))
	mux.Handle("/users/{userId}/requests/{requestId}/cancel", methodMux(map[string]http.Handler{
		http.MethodPatch: http.HandlerFunc(requestsHandler.Cancel),
	}))

	// Admin surface.
	mux.Handle("/admin/events", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.AdminSearch),
	}))
	mux.Handle("/admin/events/{eventId}", methodMux(map[string]http.Handler{
		http.MethodPatch: http.HandlerFunc(eventsHandler.AdminUpdate),
	}))
	mux.Handle("/admin/users", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(usersHandler.List),
		http.MethodPost: http.HandlerFunc(usersHandler.Create),
	}))
	mux.Handle("/admin/users/{userId}", methodMux(map[string]http.Handler{
		http.MethodDelete: http.HandlerFunc(usersHandler.Delete),
	}))
	mux.Handle("/admin/categories", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(categoriesHandler.Create),
	}))
	mux.Handle("/admin/categories/{catId}", methodMux(map[string]http.Handler{
		http.MethodPatch:  http.HandlerFunc(categoriesHandler.Update),
		http.MethodDelete: http.HandlerFunc(categoriesHandler.Delete),
	}))
	mux.Handle("/admin/compilations", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(compilationsHandler.Create),
	}))
	mux.Handle("/admin/compilations/{compId}", methodMux(map[string]http.Handler{
		http.MethodPatch:  http.HandlerFunc(compilationsHandler.Update),
		http.MethodDelete: http.HandlerFunc(compilationsHandler.Delete),
	}))

	return chain(mux,
		metrics.InstrumentHandler,
		middleware.RateLimit(cfg.RateLimit),
		middleware.RequestLogging(logger),
		middleware.CorrelationID(logger),
	)
}

// NewStatsRouter wires the stats server surface.
func NewStatsRouter(cfg config.StatsServerConfig, logger zerolog.Logger, pool *pgxpool.Pool, service *stats.Service) http.Handler {
	statsHandler := handlers.NewStatsHandler(service, cfg.Environment)

	mux := http.NewServeMux()
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(pool))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("/hit", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(statsHandler.RecordHit),
	}))
	mux.Handle("/stats", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(statsHandler.Counts),
	}))

	return chain(mux,
		metrics.InstrumentHandler,
		middleware.RequestLogging(logger),
		middleware.CorrelationID(logger),
	)
}

// chain wraps handler so the last listed middleware runs outermost.
func chain(handler http.Handler, wrap ...func(http.Handler) http.Handler) http.Handler {
	for _, w := range wrap {
		handler = w(handler)
	}
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
