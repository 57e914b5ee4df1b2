package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivescan/drivescan-backend/services"
	"github.com/drivescan/drivescan-backend/store"
)

// GetHistory serves the cached document list. With ?refresh=true it reads
// the bridge first and, on success, replaces the cache wholesale; the
// sheet is the source of truth.
func GetHistory(c *gin.Context) {
	st := c.MustGet("store").(*store.Store)

	if c.Query("refresh") == "true" {
		endpoint := st.Get(store.KeyScriptEndpoint)
		if endpoint != "" {
			docs, err := services.FetchFromSheets(endpoint)
			var versionErr *services.VersionError
			if errors.As(err, &versionErr) {
				c.JSON(http.StatusConflict, gin.H{
					"error":  "Puente desactualizado. Actualiza el script en configuración.",
					"banner": versionErr.Banner,
				})
				return
			}
			if err == nil {
				if err := st.ReplaceHistory(docs); err != nil {
					log.Println("no se pudo actualizar el caché local:", err)
				}
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"documents": st.History()})
}

// DeleteDocument removes a row from the sheet by folio and refreshes the
// local cache from the authoritative remote set.
func DeleteDocument(c *gin.Context) {
	st := c.MustGet("store").(*store.Store)
	folio := c.Param("folio")

	endpoint := st.Get(store.KeyScriptEndpoint)
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Configura el puente en configuración."})
		return
	}

	deleted := services.DeleteFromSheets(folio, endpoint)

	docs, err := services.FetchFromSheets(endpoint)
	if err == nil {
		if err := st.ReplaceHistory(docs); err != nil {
			log.Println("no se pudo actualizar el caché local:", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted":   deleted,
		"documents": st.History(),
	})
}
