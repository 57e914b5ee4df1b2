package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivescan/drivescan-backend/config"
	"github.com/drivescan/drivescan-backend/services"
	"github.com/drivescan/drivescan-backend/store"
)

// GetLicense recomputes the entitlement snapshot. Nothing is cached: the
// worker gate and this endpoint both ask the authority (or its local
// fallback) fresh every time.
func GetLicense(c *gin.Context) {
	st := c.MustGet("store").(*store.Store)
	sub := services.ValidateLicense(st, config.LicenseServerURL(), st.Get(store.KeyScriptEndpoint))
	c.JSON(http.StatusOK, sub)
}

// ActivatePremium records a confirmed purchase and revalidates. The flag
// also feeds the offline trial fallback, so activation survives license
// server outages.
func ActivatePremium(c *gin.Context) {
	st := c.MustGet("store").(*store.Store)

	if err := st.SetBool(store.KeyPremiumFlag, true); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo activar la licencia", "details": err.Error()})
		return
	}

	sub := services.ValidateLicense(st, config.LicenseServerURL(), st.Get(store.KeyScriptEndpoint))
	c.JSON(http.StatusOK, sub)
}
