package http

import (
	"net/http"
	"time"

	"github.com/meetgrid/meet-service/internal/service"
	httpmw "github.com/meetgrid/meet-service/internal/transport/http/middleware"
	"github.com/meetgrid/meet-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handler, memberSvc *service.MemberService, wsServer *ws.Server, tokens httpmw.TokenVerifier) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(httpmw.MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// WS endpoint authenticates via access_token query param
	r.Get("/ws/rooms/{id}", wsServer.HandleWS)

	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	r.Group(func(pr chi.Router) {
		pr.Use(httpmw.AuthMiddleware(tokens))
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Route("/rooms", func(rm chi.Router) {
			rm.Post("/", h.CreateRoom)
			rm.Get("/", h.ListRooms)

			rm.Route("/{id}", func(rr chi.Router) {
				// the {id} param is only bound once routing reaches this
				// subrouter, so the touch has to live here
				rr.Use(httpmw.HeartbeatMiddleware(memberSvc))

				rr.Get("/", h.GetRoom)
				rr.Delete("/", h.DeleteRoom)
				rr.Post("/join", h.JoinRoom)
				rr.Post("/leave", h.LeaveRoom)
				rr.Get("/participants", h.GetParticipants)
				rr.Get("/messages", h.GetMessages)
				rr.Post("/messages", h.PostMessage)
				rr.Get("/files", h.ListFiles)
				rr.Post("/files", h.UploadFile)
				rr.Post("/signal", h.PostSignal)
			})
		})

		pr.Route("/files/{fileID}", func(fr chi.Router) {
			fr.Get("/download", h.DownloadFile)
			fr.Delete("/", h.DeleteFile)
		})
	})

	// health + metrics
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
