package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	classroomhandler "github.com/rehearsed/classroom/backend/internal/handler/classroom"
	lessonhandler "github.com/rehearsed/classroom/backend/internal/handler/lesson"
	personahandler "github.com/rehearsed/classroom/backend/internal/handler/persona"
	"github.com/rehearsed/classroom/backend/internal/middleware"
	"github.com/rehearsed/classroom/backend/pkg/utils"
)

// Deps collects everything the router mounts. Optional handlers may be
// nil and their routes are simply not registered.
type Deps struct {
	Persona   *personahandler.Handler
	Lesson    *lessonhandler.Handler
	Classroom *classroomhandler.Handler
	WS        *classroomhandler.WSHandler
}

// NewRouter assembles the HTTP surface.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", handleHealth)

		if deps.Persona != nil {
			deps.Persona.RegisterRoutes(api)
		}
		if deps.Lesson != nil {
			deps.Lesson.RegisterRoutes(api)
		}
		if deps.Classroom != nil {
			deps.Classroom.RegisterRoutes(api)
		}
		if deps.WS != nil {
			deps.WS.RegisterRoutes(api)
		}
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
