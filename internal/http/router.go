package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	wizardH *WizardHandler,
	personaH *PersonaHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/templates", wizardH.ListTemplates)

	wizards := r.Group("/wizards")
	wizards.POST("", wizardH.StartWizard)
	wizards.GET("/:id", wizardH.GetWizard)
	wizards.DELETE("/:id", wizardH.DiscardWizard)
	wizards.POST("/:id/template", wizardH.SelectTemplate)
	wizards.POST("/:id/advance", wizardH.Advance)
	wizards.POST("/:id/retreat", wizardH.Retreat)
	wizards.PATCH("/:id/fields", wizardH.UpdateField)
	wizards.POST("/:id/knowledge", wizardH.AddKnowledge)
	wizards.DELETE("/:id/knowledge/:itemID", wizardH.RemoveKnowledge)
	wizards.PUT("/:id/training-config", wizardH.SetTrainingConfig)
	wizards.POST("/:id/presets", wizardH.SavePreset)
	wizards.DELETE("/:id/presets/:presetID", wizardH.DeletePreset)
	wizards.POST("/:id/presets/:presetID/apply", wizardH.ApplyPreset)
	wizards.POST("/:id/commit", wizardH.Commit)

	personas := r.Group("/personas")
	personas.GET("", personaH.ListPersonas)
	personas.GET("/:id", personaH.GetPersona)
	personas.POST("/:id/preview", personaH.Preview)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
