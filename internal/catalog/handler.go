package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/obras", h.listArtworks)
	rg.GET("/obras/:id", h.getArtwork)
	rg.GET("/artistas", h.listArtists)
	rg.GET("/artistas/:id", h.getArtist)
	rg.GET("/categorias", h.listCategories)
	rg.GET("/categorias/:slug", h.getCategory)
	rg.GET("/colecciones", h.listCollections)
	rg.GET("/eventos", h.listEvents)
	rg.GET("/noticias", h.listNews)
	rg.GET("/notificaciones", h.listNotifications)
}

func (h *Handler) listArtworks(c *gin.Context) {
	q := ListQuery{
		Q:        c.Query("q"),
		Category: c.Query("categoria"),
		Sort:     ParseSortKey(c.Query("sort")),
		Limit:    parseInt(c.Query("limit"), 20),
		Offset:   parseInt(c.Query("offset"), 0),
	}
	items, total := h.Store.List(c.Request.Context(), q)
	limit, offset := PageBounds(q.Limit, q.Offset)

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"sort":   q.Sort,
		"items":  items,
	})
}

func (h *Handler) getArtwork(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	d := h.Store.ArtworkDetail(c.Request.Context(), id)
	if d == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) listArtists(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.Store.Artists(c.Request.Context())})
}

func (h *Handler) getArtist(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	d := h.Store.ArtistDetail(c.Request.Context(), id)
	if d == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.Store.Categories(c.Request.Context())})
}

// getCategory keeps the view shape on 404 so pages can render the empty state.
func (h *Handler) getCategory(c *gin.Context) {
	view := h.Store.CategoryView(c.Request.Context(), c.Param("slug"))
	if view.Category == nil {
		c.JSON(http.StatusNotFound, view)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) listCollections(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.Store.Collections(c.Request.Context())})
}

func (h *Handler) listEvents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.Store.Events(c.Request.Context())})
}

func (h *Handler) listNews(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.Store.News(c.Request.Context())})
}

func (h *Handler) listNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.Store.Notifications(c.Request.Context())})
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
