package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/drivescan/drivescan-backend/models"
	"github.com/drivescan/drivescan-backend/store"
)

// TrialWindow is the local fallback entitlement period applied when the
// license server cannot be reached.
const TrialWindow = 7 * 24 * time.Hour

// newUserKey identifies installs that have not configured a bridge yet;
// the master server registers them as trial users.
const newUserKey = "new_user_trial"

var licenseClient = &http.Client{Timeout: 10 * time.Second}

// TrialStore is the slice of the local store the fallback computation
// needs: the install anchor and the premium flag.
type TrialStore interface {
	InstallTimestamp() int64
	GetBool(key string) bool
}

type licenseResponse struct {
	Active bool   `json:"active"`
	Plan   string `json:"plan"`
	Status string `json:"status"`
}

// ValidateLicense asks the master license server for the entitlement of
// the install identified by clientURL. Any failure falls back to the
// local trial computation; a network hiccup must never lock a paying
// user out.
func ValidateLicense(st TrialStore, masterURL, clientURL string) *models.UserSubscription {
	key := clientURL
	if key == "" {
		key = newUserKey
	}

	sub, err := queryLicenseServer(masterURL, key)
	if err != nil {
		log.Println("servidor de licencias no disponible:", err)
		return localTrialFallback(st)
	}
	return sub
}

func queryLicenseServer(masterURL, key string) (*models.UserSubscription, error) {
	resp, err := licenseClient.Get(masterURL + "?url=" + url.QueryEscape(key))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("servidor de licencias respondió %d", resp.StatusCode)
	}

	var data licenseResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	plan := models.Plan(data.Plan)
	if plan == "" {
		plan = models.PlanFree
	}
	status := models.SubscriptionStatus(data.Status)
	if status == "" {
		status = models.SubExpired
	}
	return &models.UserSubscription{
		UserID:    key,
		Active:    data.Active,
		TrialEnds: 0,
		Plan:      plan,
		Status:    status,
	}, nil
}

// localTrialFallback grants access for TrialWindow after first run, or
// indefinitely once the premium flag is set. Availability over strictness.
func localTrialFallback(st TrialStore) *models.UserSubscription {
	installed := st.InstallTimestamp()
	trialEnds := installed + TrialWindow.Milliseconds()
	expired := time.Now().UnixMilli() > trialEnds
	premium := st.GetBool(store.KeyPremiumFlag)

	sub := &models.UserSubscription{
		UserID:    "local_fallback",
		Active:    premium || !expired,
		TrialEnds: trialEnds,
		Plan:      models.PlanFree,
		Status:    models.SubActive,
	}
	if premium {
		sub.Plan = models.PlanPro
	} else if expired {
		sub.Status = models.SubExpired
	}
	return sub
}
