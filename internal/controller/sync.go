package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxImportBytes = 8 << 20

// Export downloads the device's data as one JSON file.
func (h *Handler) Export(c *gin.Context) {
	b, err := h.Planner.Export(c.Request.Context(), h.session(c))
	if err != nil {
		fail(c, "Export", err)
		return
	}
	name := fmt.Sprintf("weddingplan-%s.json", b.ExportedAt.Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.JSON(http.StatusOK, b)
}

// Import replaces the collections present in the uploaded file.
func (h *Handler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	data, err := c.GetRawData()
	if err != nil {
		badRequest(c)
		return
	}
	res, err := h.Planner.Import(c.Request.Context(), h.session(c), data)
	if err != nil {
		fail(c, "Import", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": res})
}

// Migrate pushes this device's records the remote does not have yet. Call
// it once after signing in, before the first remote read replaces local
// data.
func (h *Handler) Migrate(c *gin.Context) {
	rep, err := h.session(c).Migrate(c.Request.Context())
	if err != nil {
		fail(c, "Migrate", err)
		return
	}
	c.JSON(http.StatusOK, rep)
}
