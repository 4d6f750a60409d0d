package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/atvirokodosprendimai/assettrack/internal/application"
	"github.com/atvirokodosprendimai/assettrack/internal/domain"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type contextKey string

const identityKey contextKey = "identity"

// Options tunes the router plumbing. Zero values disable the corresponding limit.
type Options struct {
	RequireAuth     bool
	CORSOrigins     []string
	RateLimitPerMin int
	BodyLimitBytes  int64
}

type Handler struct {
	service *application.InventoryService
	opts    Options
}

func NewRouter(service *application.InventoryService, opts Options) http.Handler {
	h := &Handler{service: service, opts: opts}
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestContext)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: defaultOrigins(opts.CORSOrigins),
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))
	r.Use(prometheusMetrics)
	r.Use(rateLimit(opts.RateLimitPerMin, time.Minute))
	r.Use(bodyLimit(opts.BodyLimitBytes))

	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/uploads/{key}", h.handleServeUpload)
	r.Post("/ntdtb/users", h.handleLogin)

	r.Route("/api", func(api chi.Router) {
		if opts.RequireAuth {
			api.Use(h.requireAuthAPI)
		}

		api.With(h.requireAuthAPI).Get("/user/profile", h.handleProfile)
		api.With(h.requireAuthAPI).Put("/user/profile/update", h.handleUpdateProfile)
		api.Put("/user/{id}", h.handleUpdateUser)
		api.Delete("/user/{id}", h.handleDeleteUser)
		api.Get("/users", h.handleListUsers)
		api.Post("/users", h.handleCreateUser)
		api.Get("/roles", h.handleListRoles)

		api.Get("/equipement", h.handleListEquipment)
		api.Get("/equipement/{id}", h.handleGetEquipment)
		api.Post("/equipment", h.handleCreateEquipment)
		api.Put("/equipment/{id}", h.handleUpdateEquipment)
		api.Delete("/equipment/{id}", h.handleDeleteEquipment)
		api.Get("/equipment/search", h.handleSearchItems)
		api.Get("/equipment/suggestions", h.handleItemSuggestions)
		api.Get("/items/{id}", h.handleItemsByEquipment)
		api.Get("/available-equipment", h.handleAvailableEquipment)

		api.Get("/item", h.handleListItems)
		api.Post("/item", h.handleCreateItem)
		api.Put("/item/{id}", h.handleUpdateItem)
		api.Delete("/item/{id}", h.handleDeleteItem)
		api.Get("/item/history/{id}", h.handleItemHistory)
		api.Post("/changestatus", h.handleChangeStatus)

		api.Get("/note", h.handleListNotes)
		api.Post("/note", h.handleCreateNote)
		api.Get("/note/search", h.handleSearchNotes)
		api.Get("/note/user/{id}", h.handleNotesByUser)
		api.Get("/note/images/{id}", h.handleNoteImages)
		api.Put("/note/{id}", h.handleUpdateNote)
		api.Delete("/note/{id}", h.handleDeleteNote)
		api.With(h.requireAuthAPI).Get("/mynotes", h.handleMyNotes)

		api.Get("/device-summary", h.handleDeviceSummary)
		api.Get("/equipment-by-node", h.handleEquipmentByNode)
		api.Get("/recent-activities", h.handleRecentActivities)

		api.Get("/nodes", h.handleListNodes)
		api.Get("/rooms", h.handleRoomOverview)
		api.Get("/rooms/search", h.handleSearchRooms)
		api.Get("/rooms/suggestions", h.handleRoomSuggestions)
		api.Get("/rooms/nodes", h.handleNodeRefs)
		api.Get("/rooms/nodes/search", h.handleSearchNodes)
		api.Post("/rooms/node", h.handleCreateNode)
		api.Put("/rooms/node/{id}", h.handleUpdateNode)
		api.Delete("/rooms/node/{id}", h.handleDeleteNode)
		api.Post("/rooms/room", h.handleCreateRoom)
		api.Put("/rooms/room/{id}", h.handleUpdateRoom)
		api.Delete("/rooms/room/{id}", h.handleDeleteRoom)
		api.Get("/rooms/{id}", h.handleRoomsByNode)
		api.Get("/rooms/{id}/objects", h.handleRoomObjects)

		api.Get("/objects", h.handlePlacements)
		api.Post("/objects", h.handleCreateObject)
		api.Get("/objects/{id}", h.handleObjectsByRoom)
		api.Put("/objects/{id}", h.handleUpdateObject)
		api.Delete("/objects/{id}", h.handleDeleteObject)
		api.Get("/objects/{id}/items", h.handleObjectItems)
		api.Post("/objects/{id}/items", h.handlePlaceItem)
		api.Get("/object/{id}", h.handleGetObject)
		api.Get("/object-details", h.handleObjectDetails)

		api.Post("/upload-chunk", h.handleUploadChunk)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) requireAuthAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identityFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		identity, err := h.authenticateRequest(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
	})
}

func (h *Handler) authenticateRequest(r *http.Request) (domain.Identity, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return domain.Identity{}, domain.Unauthorized("no authorization header")
	}
	if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return domain.Identity{}, domain.Unauthorized("no token provided")
	}
	return h.service.Authenticate(r.Context(), strings.TrimSpace(authHeader[7:]))
}

func identityFromContext(ctx context.Context) (domain.Identity, bool) {
	value := ctx.Value(identityKey)
	if value == nil {
		return domain.Identity{}, false
	}
	identity, ok := value.(domain.Identity)
	return identity, ok
}

func defaultOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
