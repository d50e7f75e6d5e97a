package handlers

import (
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerTagNameOnce sync.Once

// RegisterRoutes mounts the order API. auth guards only the /api group.
func RegisterRoutes(r *gin.Engine, orders *OrderHandler, health *HealthHandler, auth gin.HandlerFunc) {
	useJSONFieldNames()

	r.GET("/healthz", health.Live)
	r.GET("/ready", health.Ready)

	api := r.Group("/api")
	if auth != nil {
		api.Use(auth)
	}
	api.POST("/orders", orders.CreateOrder)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Code: "NOT_FOUND", Message: "route not found"})
	})
}

// useJSONFieldNames makes validation errors name fields by their JSON keys.
func useJSONFieldNames() {
	registerTagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}
