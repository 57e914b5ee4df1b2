package services

import (
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// ServiceState is the probe result for one backend.
type ServiceState string

const (
	StateOnline   ServiceState = "online"
	StateOffline  ServiceState = "offline"
	StateChecking ServiceState = "checking"
)

// SystemStatus aggregates the two backends the pipeline depends on.
type SystemStatus struct {
	AI     ServiceState `json:"ai"`
	Sheets ServiceState `json:"sheets"`
}

var probeClient = &http.Client{Timeout: 8 * time.Second}

// CheckConnectivity probes the AI backend and the bridge endpoint. The AI
// check is key presence only; a full model round trip is too expensive
// for a health ping. The bridge check is a bare GET; any response at all
// counts as online (the banner endpoint answers plain text).
func CheckConnectivity(scriptURL, apiKey string) SystemStatus {
	status := SystemStatus{AI: StateChecking, Sheets: StateChecking}

	var g errgroup.Group
	g.Go(func() error {
		if apiKey != "" {
			status.AI = StateOnline
		} else {
			status.AI = StateOffline
		}
		return nil
	})
	g.Go(func() error {
		if scriptURL == "" {
			status.Sheets = StateOffline
			return nil
		}
		resp, err := probeClient.Get(scriptURL)
		if err != nil {
			status.Sheets = StateOffline
			return nil
		}
		resp.Body.Close()
		status.Sheets = StateOnline
		return nil
	})
	g.Wait()

	return status
}
