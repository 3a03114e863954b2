package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(apiHandler.logger))
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	if apiHandler.metrics != nil {
		r.Handle("/metrics", apiHandler.metrics.Handler())
	}

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/login", apiHandler.LoginHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			r.Get("/brands", apiHandler.ListBrandsHandler)
			r.Post("/brands", apiHandler.CreateBrandHandler)
			r.Put("/brands/active", apiHandler.SetActiveBrandHandler)

			r.Route("/brands/{brandID}", func(r chi.Router) {
				r.Patch("/", apiHandler.UpdateBrandHandler)
				r.Delete("/", apiHandler.DeleteBrandHandler)

				// Chat routes
				r.Get("/chat", apiHandler.GetChatHandler)
				r.Put("/chat/mode", apiHandler.SetChatModeHandler)
				r.Post("/chat/messages", apiHandler.PostMessageHandler)
				r.Post("/chat/options", apiHandler.SelectOptionHandler)

				// Strategy routes
				r.Get("/strategy", apiHandler.GetStrategyHandler)
				r.Post("/strategy", apiHandler.GenerateStrategyHandler)
				r.Post("/strategy/approve", apiHandler.ApproveStrategyHandler)
				r.Put("/strategy/sections/{sectionID}", apiHandler.UpdateSectionHandler)
				r.Post("/strategy/sections/{sectionID}/regenerate", apiHandler.RegenerateSectionHandler)
				r.Get("/themes", apiHandler.ListThemesHandler)

				// Calendar routes
				r.Post("/calendar/generate", apiHandler.GenerateCalendarHandler)
				r.Get("/cards", apiHandler.ListCardsHandler)
				r.Post("/cards", apiHandler.CreateCardHandler)
				r.Patch("/cards/{cardID}", apiHandler.UpdateCardHandler)
				r.Delete("/cards/{cardID}", apiHandler.DeleteCardHandler)
				r.Put("/cards/{cardID}/date", apiHandler.MoveCardHandler)
				r.Post("/cards/{cardID}/duplicate", apiHandler.DuplicateCardHandler)
				r.Post("/cards/{cardID}/fields", apiHandler.GenerateAllFieldsHandler)
				r.Post("/cards/{cardID}/fields/{field}", apiHandler.FillFieldHandler)
			})

			r.Get("/calendar/view", apiHandler.GetCalendarViewHandler)
			r.Put("/calendar/view", apiHandler.SetCalendarViewHandler)
			r.Put("/calendar/settings", apiHandler.UpdateCalendarSettingsHandler)
			r.Post("/calendar/navigate", apiHandler.NavigateCalendarHandler)

			r.Get("/navigation", apiHandler.GetNavigationHandler)
			r.Put("/navigation/active", apiHandler.SetActiveTabHandler)
			r.Post("/navigation/unlock", apiHandler.UnlockTabHandler)
		})
	})

	return r
}
