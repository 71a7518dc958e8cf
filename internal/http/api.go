package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"userhub/internal/service"
	"userhub/internal/usecase"
)

// Dependencies lists what the router serves. Optional services left nil keep
// their routes unregistered.
type Dependencies struct {
	Users    usecase.Users
	Auth     service.AuthService
	Payments service.PaymentService
	Files    service.FileService
	Push     service.PushService
	Logger   logrus.FieldLogger

	RateLimit     int
	RateWindow    time.Duration
	MaxUploadSize int64
	SSLRedirect   bool
}

// Handler wires HTTP routes to use cases and services.
type Handler struct {
	users    usecase.Users
	auth     service.AuthService
	payments service.PaymentService
	files    service.FileService
	push     service.PushService
	logger   logrus.FieldLogger
	deps     Dependencies
}

func NewHandler(deps Dependencies) *Handler {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	if deps.RateLimit <= 0 {
		deps.RateLimit = 100
	}
	if deps.RateWindow <= 0 {
		deps.RateWindow = time.Minute
	}
	if deps.MaxUploadSize <= 0 {
		deps.MaxUploadSize = 10 << 20
	}
	return &Handler{
		users:    deps.Users,
		auth:     deps.Auth,
		payments: deps.Payments,
		files:    deps.Files,
		push:     deps.Push,
		logger:   deps.Logger,
		deps:     deps,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	useJSONFieldNames()

	router.Use(
		requestLogger(h.logger),
		corsMiddleware(),
		secureHeaders(h.deps.SSLRedirect),
		rateLimit(h.deps.RateLimit, h.deps.RateWindow),
	)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody("NOT_FOUND", "route not found"))
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		users := v1.Group("/users")
		users.GET("", h.listUsers)
		users.POST("", h.createUser)
		users.GET("/:id", h.getUser)
		users.PATCH("/:id", h.updateUser)
		users.DELETE("/:id", h.deleteUser)

		if h.auth == nil {
			return
		}
		v1.POST("/auth/token", h.issueToken)

		authed := v1.Group("", h.requireAuth())
		if h.payments != nil {
			authed.GET("/users/:id/payments", h.listUserPayments)
			payments := authed.Group("/payments")
			payments.POST("/stripe", h.verifyStripe)
			payments.POST("/apple", h.verifyApple)
			payments.POST("/google", h.verifyGoogle)
			payments.POST("/disputes", h.handleDispute)
			payments.GET("/:id", h.getPayment)
			payments.POST("/:id/refund", h.refundPayment)
		}
		if h.files != nil {
			files := authed.Group("/files")
			files.GET("", h.listFiles)
			files.POST("/upload", h.uploadFile)
			files.GET("/:id", h.getFile)
			files.GET("/:id/download", h.downloadFile)
			files.DELETE("/:id", h.deleteFile)
		}
		if h.push != nil {
			authed.POST("/push/messages", h.enqueuePush)
		}
	}
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data})
}
