package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivescan/drivescan-backend/store"
)

type settingsPayload struct {
	ScriptEndpoint string `json:"remote_script_endpoint"`
	SheetPageURL   string `json:"remote_sheet_page_url"`
}

// GetSettings returns the configured bridge endpoints.
func GetSettings(c *gin.Context) {
	st := c.MustGet("store").(*store.Store)
	c.JSON(http.StatusOK, settingsPayload{
		ScriptEndpoint: st.Get(store.KeyScriptEndpoint),
		SheetPageURL:   st.Get(store.KeySheetPageURL),
	})
}

// SaveSettings persists the bridge endpoints. Clients re-run the health
// cascade after saving, matching the settings-save refresh of the UI.
func SaveSettings(c *gin.Context) {
	st := c.MustGet("store").(*store.Store)

	var payload settingsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo inválido", "details": err.Error()})
		return
	}

	if err := st.Set(store.KeyScriptEndpoint, payload.ScriptEndpoint); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo guardar la configuración", "details": err.Error()})
		return
	}
	if err := st.Set(store.KeySheetPageURL, payload.SheetPageURL); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo guardar la configuración", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Configuración guardada"})
}
