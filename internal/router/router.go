// internal/router/router.go
package router

import (
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"github.com/scottshadow56/Precision-N-back/internal/config"
	"github.com/scottshadow56/Precision-N-back/internal/handlers"
	"github.com/scottshadow56/Precision-N-back/internal/models"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.String(http.StatusTooManyRequests, "Too many requests. Try again later.")
}

func Setup(log *zap.Logger, presets *models.PresetList) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	store := cookie.NewStore([]byte(config.Conf.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	router.Use(sessions.Sessions("nbacksession", store))

	// Sessions must be initialized before these can use them.
	router.Use(CSRFProtection())
	router.Use(UserLoaderMiddleware(log))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		c.Next()
	})

	// Handlers and routes
	authHandler := handlers.NewAuthHandler(log)
	sessionHandler := handlers.NewSessionHandler(log, presets)
	calibrationHandler := handlers.NewCalibrationHandler(log)
	resultsHandler := handlers.NewResultsHandler(log)
	userHandler := handlers.NewUserHandler(log)

	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 5,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	router.GET("/csrf", func(c *gin.Context) {
		token, _ := c.Get(csrfTokenContextKey)
		c.JSON(http.StatusOK, gin.H{"token": token})
	})

	router.POST("/login", limiter, authHandler.Login)
	router.POST("/logout", authHandler.Logout)
	router.POST("/register", limiter, authHandler.Register)

	authorized := router.Group("/")
	authorized.Use(AuthRequired())
	{
		gameRoutes := authorized.Group("/game")
		{
			gameRoutes.POST("/start", sessionHandler.Start)
			gameRoutes.GET("/state", sessionHandler.State)
			gameRoutes.POST("/respond", sessionHandler.Respond)
			gameRoutes.POST("/quit", sessionHandler.Quit)
			gameRoutes.GET("/summary", sessionHandler.Summary)
		}

		calibrationRoutes := authorized.Group("/calibration")
		{
			calibrationRoutes.POST("/start", calibrationHandler.Start)
			calibrationRoutes.GET("/trial", calibrationHandler.Trial)
			calibrationRoutes.POST("/answer", calibrationHandler.Answer)
			calibrationRoutes.POST("/end", calibrationHandler.End)
		}

		resultsRoutes := authorized.Group("/results")
		{
			resultsRoutes.GET("", resultsHandler.History)
			resultsRoutes.GET("/chart", resultsHandler.Chart)
			resultsRoutes.GET("/thresholds", resultsHandler.Thresholds)
		}

		profileRoutes := authorized.Group("/profile")
		{
			profileRoutes.GET("", userHandler.Profile)
			profileRoutes.POST("/update-info", userHandler.UpdateInfo)
			profileRoutes.POST("/update-password", userHandler.UpdatePassword)
			profileRoutes.POST("/delete", userHandler.DeleteAccount)
		}
	}

	return router
}
