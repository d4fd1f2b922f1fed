package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskhive/backend/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Task    *apiHandler.TaskHandler
	Account *apiHandler.AccountHandler
	Health  *apiHandler.HealthHandler
}

// New builds the route table. Delete and complete stay GETs for
// compatibility with the original link-based UI; everything else that
// mutates is a POST.
func New(handlers Handlers, guard func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Public routes
	r.GET("/register", handlers.Auth.ShowRegister)
	r.POST("/register", handlers.Auth.Register)
	r.GET("/login", handlers.Auth.ShowLogin)
	r.POST("/login", handlers.Auth.Login)

	// Protected routes
	r.GET("/logout", guard(handlers.Auth.Logout))
	r.GET("/account", guard(handlers.Account.Show))

	r.GET("/", guard(handlers.Task.List))
	r.POST("/", guard(handlers.Task.Create))
	r.GET("/update/{id}", guard(handlers.Task.ShowUpdate))
	r.POST("/update/{id}", guard(handlers.Task.Update))
	r.GET("/delete/{id}", guard(handlers.Task.Delete))
	r.GET("/complete/{id}", guard(handlers.Task.Toggle))

	return r
}
