package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sidebar-toolkit/internal/handlers"
	"sidebar-toolkit/internal/markdown"
	"sidebar-toolkit/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService   service.ChatService
	NoticeService service.NoticeService
	Settings      handlers.SettingsStore
	NoticeViewer  handlers.NoticeViewer
	Markdown      *markdown.Renderer
	DB            handlers.Pinger
	NoticeBackend string

	// Debounce delays of the live diff panel.
	CompareDelay time.Duration
	SelectDelay  time.Duration

	AllowedOrigins []string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(deps.AllowedOrigins))
	r.Use(LoggerMiddleware)

	md := deps.Markdown
	if md == nil {
		md = markdown.New()
	}

	noticeHandler := handlers.NewNoticeHandler(deps.NoticeService)
	chatHandler := handlers.NewChatHandler(deps.ChatService)
	settingsHandler := handlers.NewSettingsHandler(deps.Settings)
	noticeViewHandler := handlers.NewNoticeViewHandler(deps.NoticeViewer)
	toolsHandler := handlers.NewToolsHandler(md)
	diffHandler := handlers.NewDiffHandler(deps.CompareDelay, deps.SelectDelay)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.NoticeBackend)

	r.Route("/api", func(r chi.Router) {
		r.Handle("/health", healthHandler)

		// Notice server. These answer OPTIONS and wrong methods themselves.
		r.HandleFunc("/login", noticeHandler.Login)
		r.HandleFunc("/list", noticeHandler.List)
		r.HandleFunc("/publish", noticeHandler.Publish)
		r.HandleFunc("/latest", noticeHandler.Latest)

		// Sidebar announcement bell.
		r.Get("/notice", noticeViewHandler.Show)
		r.Post("/notice/read", noticeViewHandler.Read)

		r.Get("/settings/connection", settingsHandler.GetConnection)
		r.Put("/settings/connection", settingsHandler.PutConnection)
		r.Get("/settings/theme", settingsHandler.GetTheme)
		r.Put("/settings/theme", settingsHandler.PutTheme)
		r.Get("/themes", settingsHandler.Themes)

		r.Handle("/chat", chatHandler)
		r.Get("/chat/history", chatHandler.History)
		r.Delete("/chat/history", chatHandler.Clear)
		r.Post("/chat/regenerate", chatHandler.Regenerate)
		r.Get("/chat/models", chatHandler.Models)

		r.Route("/tools", func(r chi.Router) {
			r.Post("/json", toolsHandler.JSON)
			r.Post("/markdown", toolsHandler.Markdown)
			r.Post("/markdown/images", toolsHandler.EmbedImages)
			r.Post("/dialogue", toolsHandler.Dialogue)
			r.Post("/diff", diffHandler.Compare)
			r.Get("/diff/ws", diffHandler.Live)
		})
	})

	return r
}
