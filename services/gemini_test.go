package services

import (
	"testing"
)

func TestParseGuideResponseStripsCodeFences(t *testing.T) {
	text := "```json\n{\"folio\":\"77182\",\"fecha\":\"2025-03-12\",\"totalUnidades\":12}\n```"

	guide, err := ParseGuideResponse(text)
	if err != nil {
		t.Fatalf("ParseGuideResponse: %v", err)
	}
	if guide.Folio != "77182" {
		t.Errorf("folio = %q, want 77182", guide.Folio)
	}
	if guide.TotalUnidades != 12 {
		t.Errorf("totalUnidades = %d, want 12", guide.TotalUnidades)
	}
}

func TestParseGuideResponseAppliesDefaults(t *testing.T) {
	// Model response missing items, total and route validation entirely.
	guide, err := ParseGuideResponse(`{"folio":"77182","totalUnidades":12}`)
	if err != nil {
		t.Fatalf("ParseGuideResponse: %v", err)
	}

	if guide.Items == nil || len(guide.Items) != 0 {
		t.Errorf("missing items must default to empty list, got %#v", guide.Items)
	}
	if guide.Total != 0 {
		t.Errorf("missing total must default to 0, got %v", guide.Total)
	}
	if !guide.ValidacionRuta.OrigenValidado || !guide.ValidacionRuta.DestinoValidado {
		t.Errorf("missing route validation must default to validated: %+v", guide.ValidacionRuta)
	}
	if guide.ValidacionRuta.AlertaLogistica != nil {
		t.Errorf("missing alert must stay null, got %q", *guide.ValidacionRuta.AlertaLogistica)
	}
}

func TestParseGuideResponsePartialRouteValidation(t *testing.T) {
	guide, err := ParseGuideResponse(`{"folio":"1","validacionRuta":{"origenValidado":false,"alertaLogistica":"timbre ilegible"}}`)
	if err != nil {
		t.Fatalf("ParseGuideResponse: %v", err)
	}
	if guide.ValidacionRuta.OrigenValidado {
		t.Error("explicit false must survive the defaults")
	}
	if !guide.ValidacionRuta.DestinoValidado {
		t.Error("missing destino must default to true")
	}
	if guide.ValidacionRuta.AlertaLogistica == nil || *guide.ValidacionRuta.AlertaLogistica != "timbre ilegible" {
		t.Errorf("alert lost: %+v", guide.ValidacionRuta)
	}
}

func TestParseGuideResponseEmptyAlertBecomesNull(t *testing.T) {
	guide, err := ParseGuideResponse(`{"validacionRuta":{"alertaLogistica":""}}`)
	if err != nil {
		t.Fatalf("ParseGuideResponse: %v", err)
	}
	if guide.ValidacionRuta.AlertaLogistica != nil {
		t.Error("empty alert string should read as no alert")
	}
}

func TestParseGuideResponseRejectsGarbage(t *testing.T) {
	if _, err := ParseGuideResponse("lo siento, no puedo procesar esta imagen"); err == nil {
		t.Error("non-JSON response must fail")
	}
}

func TestParseGuideResponseEmptyInput(t *testing.T) {
	guide, err := ParseGuideResponse("")
	if err != nil {
		t.Fatalf("empty response should decode as empty guide, got %v", err)
	}
	if guide.Folio != "" || len(guide.Items) != 0 {
		t.Errorf("unexpected content in empty guide: %+v", guide)
	}
}
