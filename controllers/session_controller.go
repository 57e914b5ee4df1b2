package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivescan/drivescan-backend/store"
)

// StartSession flips the session flag that gates landing vs. dashboard.
// A session needs a configured bridge first; without one the client is
// sent through the setup wizard flow.
func StartSession(c *gin.Context) {
	st := c.MustGet("store").(*store.Store)

	if st.Get(store.KeyScriptEndpoint) == "" {
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": "Configura el puente antes de iniciar sesión"})
		return
	}
	if err := st.SetBool(store.KeySessionActive, true); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo iniciar la sesión", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_active": true})
}

// GetSession reports the flag so the client can pick its start view.
func GetSession(c *gin.Context) {
	st := c.MustGet("store").(*store.Store)
	c.JSON(http.StatusOK, gin.H{"session_active": st.GetBool(store.KeySessionActive)})
}

// EndSession clears the flag (logout).
func EndSession(c *gin.Context) {
	st := c.MustGet("store").(*store.Store)
	if err := st.Delete(store.KeySessionActive); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo cerrar la sesión", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_active": false})
}
