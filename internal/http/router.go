package httpapi

import (
	"net/http"

	"github.com/rekk2/event-registration/internal/domain"

	"go.uber.org/zap"
)

// Router wraps http.ServeMux; patterns use the method and wildcard syntax of Go 1.22.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler registers an http.Handler (websocket, metrics, static files).
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterNameRoutes registration pipeline, active set and search.
func (r *Router) RegisterNameRoutes(a *Authenticator, h *NameHandler) {
	r.Handle("POST /register", a.Require(domain.RoleDoorUser, h.Register))
	r.Handle("GET /recent-names/{door}", a.Require(domain.RoleDoorUser, h.RecentByDoor))
	r.Handle("GET /stats-data", a.Require(domain.RoleDoorUser, h.Stats))

	r.Handle("GET /all-names", a.Require(domain.RoleAdmin, h.AllNames))
	r.Handle("GET /names/{name}", a.Require(domain.RoleAdmin, h.Search))
	r.Handle("DELETE /names/{id}", a.Require(domain.RoleAdmin, h.DeleteName))
	r.Handle("DELETE /names", a.Require(domain.RoleAdmin, h.DeleteAll))
}

func (r *Router) RegisterDoorRoutes(a *Authenticator, h *DoorHandler) {
	r.Handle("GET /doors", a.Require(domain.RoleDoorUser, h.ListDoors))
	r.Handle("POST /doors", a.Require(domain.RoleAdmin, h.CreateDoor))
	r.Handle("PUT /doors/{id}", a.Require(domain.RoleAdmin, h.RenameDoor))
	r.Handle("DELETE /doors/{id}", a.Require(domain.RoleAdmin, h.DeleteDoor))
}

func (r *Router) RegisterArchiveRoutes(a *Authenticator, h *ArchiveHandler) {
	r.Handle("POST /archive", a.Require(domain.RoleAdmin, h.Archive))
	r.Handle("GET /archives", a.Require(domain.RoleAdmin, h.ListArchives))
	r.Handle("GET /archive/{id}", a.Require(domain.RoleAdmin, h.GetArchive))
	r.Handle("DELETE /archive/{id}", a.Require(domain.RoleAdmin, h.DeleteArchive))
}

func (r *Router) RegisterExportRoutes(a *Authenticator, h *ExportHandler) {
	r.Handle("GET /export", a.Require(domain.RoleAdmin, h.ExportActive))
	r.Handle("GET /export-archive/{id}", a.Require(domain.RoleAdmin, h.ExportArchive))
}

// RegisterAuthRoutes login, session info and account management. The service layer
// enforces which roles an admin may manage.
func (r *Router) RegisterAuthRoutes(a *Authenticator, h *AuthHandler) {
	r.Handle("POST /login", h.Login)
	r.Handle("GET /logout", h.Logout)
	r.Handle("POST /logout", h.Logout)
	r.Handle("GET /user-role", a.Require(domain.RoleDoorUser, h.UserRole))
	r.Handle("POST /createadmin", a.Optional(h.CreateAdmin))

	r.Handle("GET /users", a.Require(domain.RoleAdmin, h.ListUsers))
	r.Handle("POST /users", a.Require(domain.RoleAdmin, h.CreateUser))
	r.Handle("PUT /users/{id}", a.Require(domain.RoleAdmin, h.UpdateUser))
	r.Handle("DELETE /users/{id}", a.Require(domain.RoleAdmin, h.DeleteUser))
}

// RegisterSocketRoute live channel for door-users and up.
func (r *Router) RegisterSocketRoute(a *Authenticator, socket http.Handler) {
	r.Handle("GET /socket", a.Require(domain.RoleDoorUser, socket.ServeHTTP))
}

// RegisterOpsRoutes health and metrics, both unauthenticated.
func (r *Router) RegisterOpsRoutes(h *HealthHandler, metrics http.Handler) {
	r.Handle("GET /healthz", h.Healthz)
	r.HandleHandler("GET /metrics", metrics)
}

// RegisterStaticRoutes serves the browser pages from dir. Named pages map to their html files.
func (r *Router) RegisterStaticRoutes(dir string) {
	files := http.Dir(dir)
	r.HandleHandler("GET /", http.FileServer(files))
	for path, file := range map[string]string{
		"GET /stats": "stats.html",
		"GET /names": "names.html",
		"GET /admin": "admin.html",
	} {
		page := file
		r.Handle(path, func(w http.ResponseWriter, req *http.Request) {
			serveFile(w, req, files, page)
		})
	}
}

func serveFile(w http.ResponseWriter, r *http.Request, fs http.FileSystem, name string) {
	f, err := fs.Open(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, name, info.ModTime(), f)
}
