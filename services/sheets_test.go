package services

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/drivescan/drivescan-backend/models"
)

func TestFetchFromSheetsReversesRowsAndMapsColumns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") != "read" {
			t.Errorf("expected action=read, got %q", r.URL.RawQuery)
		}
		rows := []map[string]interface{}{
			{"FOLIO": "100", "FECHA_DOC": "2025-01-10", "EMISOR": "ACME", "RUT_EMISOR": "76.123.456-K",
				"RECEPTOR": "Cliente", "RUT_RECEPTOR": "96.987.654-3", "DESTINO": "Bodega Sur",
				"TOTAL_PALLETS": "8", "OBSERVACIONES_IA": "timbrado", "NOMBRE_ARCHIVO": "g100.pdf"},
			{"FOLIO": 200, "TOTAL_PALLETS": 4, "NOMBRE_ARCHIVO": "g200.jpg"},
		}
		json.NewEncoder(w).Encode(rows)
	}))
	defer server.Close()

	docs, err := FetchFromSheets(server.URL)
	if err != nil {
		t.Fatalf("FetchFromSheets: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}

	// Sheet order is oldest-first; the client shows newest first.
	if docs[0].Data.Folio != "200" || docs[1].Data.Folio != "100" {
		t.Errorf("rows not reversed: %q then %q", docs[0].Data.Folio, docs[1].Data.Folio)
	}
	first := docs[1]
	if first.FileName != "g100.pdf" || first.Data.NombreEmisor != "ACME" || first.Data.TotalUnidades != 8 {
		t.Errorf("column mapping broken: %+v", first)
	}
	if first.Data.ValidacionRuta.AlertaLogistica == nil || *first.Data.ValidacionRuta.AlertaLogistica != "timbrado" {
		t.Errorf("observaciones lost: %+v", first.Data.ValidacionRuta)
	}
	if first.Status != models.DocSuccess {
		t.Errorf("cloud rows are success records, got %s", first.Status)
	}

	// Missing columns default, never error.
	second := docs[0]
	if second.Data.NombreEmisor != "" || second.Data.TotalUnidades != 4 {
		t.Errorf("missing-column defaults broken: %+v", second.Data)
	}
	if len(second.Data.Items) != 0 {
		t.Errorf("cloud rows carry no line items, got %#v", second.Data.Items)
	}
}

func TestFetchFromSheetsVersionBannerPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "SERVER ONLINE V5.6")
	}))
	defer server.Close()

	_, err := FetchFromSheets(server.URL)
	var versionErr *VersionError
	if !errors.As(err, &versionErr) {
		t.Fatalf("expected VersionError, got %v", err)
	}
	if versionErr.Banner != "SERVER ONLINE V5.6" {
		t.Errorf("banner = %q", versionErr.Banner)
	}
}

func TestFetchFromSheetsDegradedResponsesReadAsEmpty(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"html error page", "<!DOCTYPE html><html><body>Error</body></html>"},
		{"broken json", `[{"FOLIO": `},
		{"json object instead of array", `{"error":"algo"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			docs, err := FetchFromSheets(server.URL)
			if err != nil {
				t.Fatalf("degraded response must not error: %v", err)
			}
			if len(docs) != 0 {
				t.Errorf("expected empty list, got %d docs", len(docs))
			}
		})
	}
}

func TestFetchFromSheetsUnreachableEndpointReadsAsEmpty(t *testing.T) {
	docs, err := FetchFromSheets("http://127.0.0.1:1/closed")
	if err != nil {
		t.Fatalf("network failure must not error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected empty list, got %d", len(docs))
	}
}

func TestSyncToSheetsSendsSentinelDefaults(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		io.WriteString(w, "OK")
	}))
	defer server.Close()

	ok := SyncToSheets(&models.DispatchGuide{TotalUnidades: 3}, "guia.jpg", server.URL)
	if !ok {
		t.Fatal("sync against a healthy bridge should succeed")
	}

	if received["action"] != "save" {
		t.Errorf("action = %v", received["action"])
	}
	payload := received["payload"].(map[string]interface{})
	if payload["folio"] != "S/F" || payload["nombreEmisor"] != "S/R" || payload["direccionEntrega"] != "S/D" {
		t.Errorf("sentinel defaults missing: %+v", payload)
	}
	if payload["fileName"] != "guia.jpg" || payload["totalUnidades"] != float64(3) {
		t.Errorf("payload fields wrong: %+v", payload)
	}
}

func TestSyncToSheetsFailuresReturnFalse(t *testing.T) {
	if SyncToSheets(&models.DispatchGuide{}, "g.jpg", "http://127.0.0.1:1/closed") {
		t.Error("network failure must report false, not panic or error")
	}
	if SyncToSheets(&models.DispatchGuide{}, "g.jpg", "") {
		t.Error("missing endpoint must report false")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()
	if SyncToSheets(&models.DispatchGuide{}, "g.jpg", server.URL) {
		t.Error("5xx from the bridge must report false")
	}
}

func TestDeleteFromSheetsPostsFolio(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		io.WriteString(w, "DELETED")
	}))
	defer server.Close()

	if !DeleteFromSheets("77182", server.URL) {
		t.Fatal("delete against a healthy bridge should succeed")
	}
	if received["action"] != "delete" || received["folio"] != "77182" {
		t.Errorf("delete payload wrong: %+v", received)
	}
	if DeleteFromSheets("", server.URL) {
		t.Error("empty folio must not dispatch")
	}
}
