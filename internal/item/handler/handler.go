package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/angelodel80/cadmus-api/internal/docjson"
	"github.com/angelodel80/cadmus-api/internal/item/repository"
	"github.com/angelodel80/cadmus-api/internal/item/service"
	"github.com/angelodel80/cadmus-api/internal/models"
	"github.com/angelodel80/cadmus-api/internal/part"
	"github.com/angelodel80/cadmus-api/pkg/logger"
	"github.com/angelodel80/cadmus-api/pkg/middleware"
)

// RawPart is the body of POST /api/:database/parts: the part as JSON text.
type RawPart struct {
	Raw string `json:"raw" binding:"required"`
}

// RegisterItemRoutes mounts the item and part routes on r. The caller's
// identity is read from the auth middleware, never from the request body.
func RegisterItemRoutes(r gin.IRouter, svc service.Service) {
	api := r.Group("/api/:database")

	api.GET("/items", func(c *gin.Context) {
		var f models.ItemFilter
		if err := c.ShouldBindQuery(&f); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		page, err := svc.GetItems(c.Request.Context(), c.Param("database"), &f)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	})

	api.GET("/item/:id", func(c *gin.Context) {
		withParts, _ := strconv.ParseBool(c.Query("parts"))
		item, err := svc.GetItem(c.Request.Context(), c.Param("database"), c.Param("id"), withParts)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	})

	api.GET("/part/:id", func(c *gin.Context) {
		doc, err := svc.GetPart(c.Request.Context(), c.Param("database"), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", doc)
	})

	api.GET("/item/:id/part/:type/:role", func(c *gin.Context) {
		doc, err := svc.GetPartFromTypeAndRole(c.Request.Context(), c.Param("database"),
			c.Param("id"), c.Param("type"), c.Param("role"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", doc)
	})

	api.GET("/item/:id/layers", func(c *gin.Context) {
		refs, err := svc.GetItemLayers(c.Request.Context(), c.Param("database"), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, refs)
	})

	api.GET("/part/:id/pins", func(c *gin.Context) {
		pins, err := svc.GetPartPins(c.Request.Context(), c.Param("database"), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, pins)
	})

	api.DELETE("/item/:id", func(c *gin.Context) {
		err := svc.DeleteItem(c.Request.Context(), c.Param("database"), c.Param("id"), middleware.CallerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	api.DELETE("/part/:id", func(c *gin.Context) {
		err := svc.DeletePart(c.Request.Context(), c.Param("database"), c.Param("id"), middleware.CallerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	api.POST("/items", func(c *gin.Context) {
		var rec models.ItemRecord
		if err := c.ShouldBindJSON(&rec); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		database := c.Param("database")
		item, isNew, err := svc.AddItem(c.Request.Context(), database, &rec, middleware.CallerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		if isNew {
			c.Header("Location", "/api/"+database+"/item/"+item.ID)
			c.JSON(http.StatusCreated, item)
			return
		}
		c.JSON(http.StatusOK, item)
	})

	api.POST("/parts", func(c *gin.Context) {
		var req RawPart
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		database := c.Param("database")
		p, err := svc.AddPart(c.Request.Context(), database, req.Raw, middleware.CallerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		body := gin.H{"id": p.ID}
		if p.IsNew {
			c.Header("Location", "/api/"+database+"/part/"+p.ID)
			c.JSON(http.StatusCreated, body)
			return
		}
		c.JSON(http.StatusOK, body)
	})
}

// writeError maps service errors to status codes.
func writeError(c *gin.Context, err error) {
	var mpe *part.MalformedPartError
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, part.ErrMissingTypeID):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, part.ErrUnknownPartType):
		// logged by the service as a configuration fault
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &mpe):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": mpe.Error(), "typeId": mpe.TypeID})
	case errors.Is(err, docjson.ErrMalformedDocument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrDuplicatePart):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
