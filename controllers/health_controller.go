package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivescan/drivescan-backend/config"
	"github.com/drivescan/drivescan-backend/services"
	"github.com/drivescan/drivescan-backend/store"
)

// HealthCheck probes both backends and, when the bridge answers, cascades
// into a cloud history reload and a license recheck, the same chain the
// app runs on foreground and after settings changes.
func HealthCheck(c *gin.Context) {
	st := c.MustGet("store").(*store.Store)
	endpoint := st.Get(store.KeyScriptEndpoint)

	status := services.CheckConnectivity(endpoint, config.GeminiAPIKey())

	response := gin.H{"status": status}

	if status.Sheets == services.StateOnline {
		docs, err := services.FetchFromSheets(endpoint)
		var versionErr *services.VersionError
		if errors.As(err, &versionErr) {
			response["version_mismatch"] = versionErr.Banner
		} else if err == nil {
			if err := st.ReplaceHistory(docs); err != nil {
				log.Println("no se pudo actualizar el caché local:", err)
			}
		}
	}

	response["subscription"] = services.ValidateLicense(st, config.LicenseServerURL(), endpoint)

	c.JSON(http.StatusOK, response)
}
