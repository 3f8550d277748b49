package http

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	middleware "todo-items.com/todo-items/internal/http/middlewares"
	"todo-items.com/todo-items/internal/security"
	"todo-items.com/todo-items/internal/services"
)

type Options struct {
	RateLimitPerMinute int
	CORSAllowOrigins   []string
	ListLimitDefault   int
}

// NewServer builds the echo instance with the full middleware stack and
// every route registered.
func NewServer(
	userService *services.UserService,
	todoItemService *services.TodoItemService,
	tokens *security.TokenCodec,
	opts Options,
	logger *log.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(logger)

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())
	if len(opts.CORSAllowOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     opts.CORSAllowOrigins,
			AllowCredentials: true,
		}))
	}
	e.Use(middleware.RateLimiter(opts.RateLimitPerMinute, time.Minute))

	Register(
		e,
		NewLoginHandler(userService, tokens),
		NewUserHandler(userService),
		NewTodoItemHandler(todoItemService, opts.ListLimitDefault),
		middleware.Authenticate(tokens, userService),
	)

	return e
}

func Register(
	e *echo.Echo,
	login *LoginHandler,
	users *UserHandler,
	todoItems *TodoItemHandler,
	auth echo.MiddlewareFunc,
) {
	e.GET("/ping", Ping)

	e.POST("/login/access-token", login.AccessToken)
	e.GET("/login/who-am-i", login.WhoAmI, auth)

	e.POST("/users", users.Register)

	current := e.Group("/users/current-user", auth)
	current.GET("", users.Current)
	current.PUT("", users.UpdateCurrent)
	current.DELETE("", users.DeleteCurrent)

	items := current.Group("/todo_items")
	items.POST("", todoItems.Create)
	items.GET("", todoItems.List)
	items.GET("/:id", todoItems.Get)
	items.PUT("/:id", todoItems.Update)
	items.POST("/:id/resolve", todoItems.Resolve)
	items.POST("/:id/reopen", todoItems.Reopen)
	items.DELETE("/:id", todoItems.Delete)
}

func Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "pong"})
}
