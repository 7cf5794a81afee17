package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/atomic"

	"github.com/cafedesk/pos-backend/handlers"
	"github.com/cafedesk/pos-backend/middlewares"
	"github.com/cafedesk/pos-backend/models"
)

const (
	readTimeout       = 5 * time.Minute
	readHeaderTimeout = 30 * time.Second
	writeTimeout      = 5 * time.Minute
)

type Dependencies struct {
	Auth    *handlers.AuthHandler
	Menu    *handlers.MenuHandler
	Orders  *handlers.OrderHandler
	Tables  *handlers.TableHandler
	Users   *handlers.UserHandler
	Reports *handlers.ReportHandler
	Upload  *handlers.UploadHandler
}

type Server struct {
	Router *mux.Router
	server *http.Server
	ready  *atomic.Bool
}

func SetupRoutes(deps Dependencies) *Server {
	router := mux.NewRouter()
	ready := atomic.NewBool(false)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			io.WriteString(w, `{"alive": false}`)
			return
		}
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"alive": true}`)
	}).Methods("GET")

	router.HandleFunc("/auth/register", deps.Auth.Register).Methods("POST")
	router.HandleFunc("/auth/login", deps.Auth.Login).Methods("POST")
	router.HandleFunc("/auth/refresh", deps.Auth.Refresh).Methods("POST")

	// public catalog reads and kiosk order submission
	router.HandleFunc("/api/products", deps.Menu.ListProducts).Methods("GET")
	router.HandleFunc("/api/products/{id}", deps.Menu.GetProduct).Methods("GET")
	router.HandleFunc("/api/categories", deps.Menu.ListCategories).Methods("GET")
	router.HandleFunc("/api/orders", deps.Orders.Create).Methods("POST")

	// staff surface; registered ahead of the customer routes so
	// /orders/active is not captured by the /orders/{id} pattern
	staff := router.PathPrefix("/api").Subrouter()
	staff.Use(middlewares.AuthMiddleware)
	staff.Use(middlewares.RoleBasedMiddleware(models.RoleAdmin, models.RoleStaff))
	staff.HandleFunc("/orders/active", deps.Orders.Active).Methods("GET")
	staff.HandleFunc("/orders/{id}/status", deps.Orders.UpdateStatus).Methods("PUT")
	staff.HandleFunc("/tables", deps.Tables.List).Methods("GET")
	staff.HandleFunc("/tables/{id}", deps.Tables.UpdateStatus).Methods("PUT")
	staff.HandleFunc("/categories", deps.Menu.CreateCategory).Methods("POST")
	staff.HandleFunc("/categories/{id}", deps.Menu.UpdateCategory).Methods("PUT")
	staff.HandleFunc("/categories/{id}", deps.Menu.DeleteCategory).Methods("DELETE")
	staff.HandleFunc("/products", deps.Menu.CreateProduct).Methods("POST")
	staff.HandleFunc("/products/{id}", deps.Menu.UpdateProduct).Methods("PUT")
	staff.HandleFunc("/products/{id}", deps.Menu.DeleteProduct).Methods("DELETE")
	staff.HandleFunc("/upload", deps.Upload.Upload).Methods("POST")

	// authenticated customer surface
	authRoutes := router.PathPrefix("/api").Subrouter()
	authRoutes.Use(middlewares.AuthMiddleware)
	authRoutes.HandleFunc("/orders/my-history", deps.Orders.MyHistory).Methods("GET")
	authRoutes.HandleFunc("/orders/{id}", deps.Orders.Get).Methods("GET")
	authRoutes.HandleFunc("/orders/{id}/rating", deps.Orders.Rate).Methods("PUT")

	authOnly := router.PathPrefix("/auth").Subrouter()
	authOnly.Use(middlewares.AuthMiddleware)
	authOnly.HandleFunc("/logout", deps.Auth.Logout).Methods("POST")
	authOnly.HandleFunc("/me", deps.Auth.Me).Methods("GET")
	authOnly.HandleFunc("/profile", deps.Auth.UpdateProfile).Methods("PUT")

	// admin only
	admin := router.PathPrefix("/api").Subrouter()
	admin.Use(middlewares.AuthMiddleware)
	admin.Use(middlewares.RoleBasedMiddleware(models.RoleAdmin))
	admin.HandleFunc("/users", deps.Users.List).Methods("GET")
	admin.HandleFunc("/users", deps.Users.CreateStaff).Methods("POST")
	admin.HandleFunc("/users/{id}", deps.Users.Update).Methods("PUT")
	admin.HandleFunc("/reports/dashboard", deps.Reports.Dashboard).Methods("GET")
	admin.HandleFunc("/reports/revenue", deps.Reports.Revenue).Methods("GET")
	admin.HandleFunc("/reports/products", deps.Reports.Products).Methods("GET")
	admin.HandleFunc("/reports/staff", deps.Reports.Staff).Methods("GET")

	// uploaded images are served straight from disk
	router.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.Upload.Dir))))

	return &Server{
		Router: router,
		ready:  ready,
	}
}

func (svr *Server) Run(port string) error {
	svr.server = &http.Server{
		Addr:              port,
		Handler:           svr.Router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	svr.ready.Store(true)
	return svr.server.ListenAndServe()
}

func (svr *Server) Shutdown(timeout time.Duration) error {
	svr.ready.Store(false)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svr.server.Shutdown(ctx)
}
