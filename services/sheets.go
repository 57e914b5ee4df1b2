package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/drivescan/drivescan-backend/models"
)

// VersionError signals that the bridge script answered with its plain-text
// status banner where JSON was expected: the deployed script predates the
// read action and must be updated by the user. It is the only read failure
// that propagates; everything else degrades to an empty list.
type VersionError struct {
	Banner string
}

func (e *VersionError) Error() string {
	return "versión del puente incompatible: " + e.Banner
}

var sheetsClient = &http.Client{Timeout: 15 * time.Second}

// savePayload is the bridge write contract. Missing values are replaced by
// the sheet's sentinel strings before dispatch, never by silent blanks.
type savePayload struct {
	Folio            string `json:"folio"`
	FechaDoc         string `json:"fechaDoc"`
	NombreEmisor     string `json:"nombreEmisor"`
	RutEmisor        string `json:"rutEmisor"`
	NombreReceptor   string `json:"nombreReceptor"`
	RutReceptor      string `json:"rutReceptor"`
	DireccionEntrega string `json:"direccionEntrega"`
	TotalUnidades    int    `json:"totalUnidades"`
	AlertaLogistica  string `json:"alertaLogistica"`
	FileName         string `json:"fileName"`
}

func orSentinel(v, sentinel string) string {
	if v == "" {
		return sentinel
	}
	return v
}

// SyncToSheets writes one guide to the bridge. Failures are reported as
// false, never as an error: sync is best-effort and retryable via the
// bulk sync path. Unlike the browser original, the response status is
// readable here, so true means the bridge acknowledged the request.
func SyncToSheets(guide *models.DispatchGuide, fileName, scriptURL string) bool {
	if scriptURL == "" || guide == nil {
		return false
	}

	alerta := ""
	if guide.ValidacionRuta.AlertaLogistica != nil {
		alerta = *guide.ValidacionRuta.AlertaLogistica
	}
	body := map[string]interface{}{
		"action": "save",
		"payload": savePayload{
			Folio:            orSentinel(guide.Folio, "S/F"),
			FechaDoc:         orSentinel(guide.Fecha, "S/F"),
			NombreEmisor:     orSentinel(guide.NombreEmisor, "S/R"),
			RutEmisor:        orSentinel(guide.RutEmisor, "S/R"),
			NombreReceptor:   orSentinel(guide.NombreReceptor, "S/R"),
			RutReceptor:      orSentinel(guide.RutReceptor, "S/R"),
			DireccionEntrega: orSentinel(guide.DireccionEntrega, "S/D"),
			TotalUnidades:    guide.TotalUnidades,
			AlertaLogistica:  alerta,
			FileName:         fileName,
		},
	}
	return postToBridge(scriptURL, body)
}

// DeleteFromSheets removes a row by folio, the cross-system join key.
// Same best-effort semantics as SyncToSheets.
func DeleteFromSheets(folio, scriptURL string) bool {
	if scriptURL == "" || folio == "" {
		return false
	}
	return postToBridge(scriptURL, map[string]interface{}{
		"action": "delete",
		"folio":  folio,
	})
}

func postToBridge(scriptURL string, body interface{}) bool {
	data, err := json.Marshal(body)
	if err != nil {
		log.Println("error serializando payload del puente:", err)
		return false
	}
	resp, err := sheetsClient.Post(scriptURL, "application/json", bytes.NewReader(data))
	if err != nil {
		log.Println("error de sincronización:", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode < http.StatusBadRequest
}

// FetchFromSheets reads the authoritative document set from the bridge.
// Empty bodies, HTML error pages and unparseable JSON all read as "nothing
// to show"; only a version mismatch propagates, because it needs user
// action instead of a silent retry.
func FetchFromSheets(scriptURL string) ([]models.ProcessedDocument, error) {
	if scriptURL == "" {
		return []models.ProcessedDocument{}, nil
	}

	cleanURL := strings.TrimSpace(scriptURL)
	separator := "?"
	if strings.Contains(cleanURL, "?") {
		separator = "&"
	}
	fullURL := fmt.Sprintf("%s%saction=read&t=%d", cleanURL, separator, time.Now().UnixMilli())

	resp, err := sheetsClient.Get(fullURL)
	if err != nil {
		return []models.ProcessedDocument{}, nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return []models.ProcessedDocument{}, nil
	}
	text := string(raw)

	if strings.Contains(text, "SERVER") && strings.Contains(text, "ONLINE") &&
		!strings.HasPrefix(strings.TrimSpace(text), "[") {
		return nil, &VersionError{Banner: strings.TrimSpace(text)}
	}
	if strings.TrimSpace(text) == "" || strings.Contains(text, "<!DOCTYPE html>") {
		return []models.ProcessedDocument{}, nil
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return []models.ProcessedDocument{}, nil
	}

	// The sheet appends chronologically; the client shows newest first.
	docs := make([]models.ProcessedDocument, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		docs = append(docs, mapRowToDocument(rows[i], i))
	}
	return docs, nil
}

// mapRowToDocument rebuilds a ProcessedDocument from one sheet row,
// tolerating missing columns.
func mapRowToDocument(row map[string]interface{}, index int) models.ProcessedDocument {
	timestamp := time.Now().UnixMilli()
	if raw := rowString(row, "FECHA_SINCRO"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			timestamp = t.UnixMilli()
		}
	}

	alerta := rowString(row, "OBSERVACIONES_IA")
	if alerta == "" {
		alerta = rowString(row, "OBSERVACIONES")
	}
	var alertaPtr *string
	if alerta != "" {
		alertaPtr = &alerta
	}

	folio := rowString(row, "FOLIO")
	id := fmt.Sprintf("cloud-%d-%s", index, orSentinel(folio, "idx"))

	return models.ProcessedDocument{
		ID:        id,
		FileName:  orSentinel(rowString(row, "NOMBRE_ARCHIVO"), "Desconocido"),
		Timestamp: timestamp,
		Status:    models.DocSuccess,
		Data: models.DispatchGuide{
			Folio:            folio,
			Fecha:            rowString(row, "FECHA_DOC"),
			NombreEmisor:     rowString(row, "EMISOR"),
			RutEmisor:        rowString(row, "RUT_EMISOR"),
			NombreReceptor:   rowString(row, "RECEPTOR"),
			RutReceptor:      rowString(row, "RUT_RECEPTOR"),
			DireccionEntrega: rowString(row, "DESTINO"),
			Items:            []models.ProductItem{},
			TotalUnidades:    rowInt(row, "TOTAL_PALLETS"),
			ValidacionRuta: models.RouteValidation{
				OrigenValidado:  true,
				DestinoValidado: true,
				AlertaLogistica: alertaPtr,
			},
		},
	}
}

func rowString(row map[string]interface{}, key string) string {
	switch v := row[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func rowInt(row map[string]interface{}, key string) int {
	switch v := row[key].(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}
