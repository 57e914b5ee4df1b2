package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/drivescan/drivescan-backend/config"
	"github.com/drivescan/drivescan-backend/models"
)

const analysisTimeout = 90 * time.Second

const guideSystemInstruction = `Eres un auditor experto en logística chilena.
Extrae los datos con precisión quirúrgica.
FECHA: Busca la fecha de emisión del documento.
RUTS: Extrae los RUTs con puntos y guion si es posible.
TOTAL UNIDADES: Tu prioridad número 1 es el conteo manual escrito por el bodeguero.
OBSERVACIONES: Indica si el documento está timbrado o si hay firmas cruzadas.`

const guideUserPrompt = "Analiza esta guía de despacho. Es CRÍTICO extraer la FECHA DE EMISIÓN del documento y el TOTAL DE BULTOS/PALLETS (especialmente si hay números escritos a mano con lápiz)."

// guideSchema forces the model into the DispatchGuide shape. The defaults
// in ParseGuideResponse still apply afterwards: the model is not trusted
// to honor the schema on every response.
var guideSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"folio":            {Type: genai.TypeString, Description: "Número de folio o correlativo de la guía"},
		"fecha":            {Type: genai.TypeString, Description: "Fecha de emisión impresa en el documento (FECHA_DOC)"},
		"nombreEmisor":     {Type: genai.TypeString, Description: "Nombre o Razón Social del emisor"},
		"rutEmisor":        {Type: genai.TypeString, Description: "RUT del emisor (ej: 76.123.456-K)"},
		"nombreReceptor":   {Type: genai.TypeString, Description: "Nombre o Razón Social del cliente/receptor"},
		"rutReceptor":      {Type: genai.TypeString, Description: "RUT del receptor (ej: 96.987.654-3)"},
		"direccionEntrega": {Type: genai.TypeString, Description: "Dirección de destino de la carga"},
		"totalUnidades":    {Type: genai.TypeNumber, Description: "Suma total de pallets o bultos. Prioriza números manuscritos."},
		"validacionRuta": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"alertaLogistica": {Type: genai.TypeString, Description: "Observaciones sobre tachones, firmas o legibilidad"},
			},
			Required: []string{"alertaLogistica"},
		},
	},
	Required: []string{"folio", "fecha", "nombreEmisor", "nombreReceptor", "totalUnidades", "validacionRuta"},
}

// AnalyzeDocument sends the normalized payload to Gemini and returns the
// extracted guide. Schema mismatches in the response are repaired by
// ParseGuideResponse rather than surfaced as errors.
func AnalyzeDocument(ctx context.Context, doc *NormalizedDocument) (*models.DispatchGuide, error) {
	ctx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.GeminiAPIKey()))
	if err != nil {
		return nil, fmt.Errorf("no se pudo crear el cliente Gemini: %w", err)
	}
	defer client.Close()

	raw, err := base64.StdEncoding.DecodeString(doc.Base64)
	if err != nil {
		return nil, fmt.Errorf("payload base64 inválido: %w", err)
	}

	model := client.GenerativeModel("gemini-2.0-flash")
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(guideSystemInstruction)},
	}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = guideSchema
	model.SetTemperature(0)

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: doc.MimeType, Data: raw},
		genai.Text(guideUserPrompt),
	)
	if err != nil {
		return nil, fmt.Errorf("error de análisis Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini no devolvió un resultado válido")
	}

	text := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	return ParseGuideResponse(text)
}

// cleanJSONResponse strips markdown code fences the model sometimes wraps
// around its JSON output.
func cleanJSONResponse(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// rawGuide mirrors DispatchGuide with optionals so that missing fields can
// be told apart from zero values.
type rawGuide struct {
	Folio            string               `json:"folio"`
	Fecha            string               `json:"fecha"`
	NombreEmisor     string               `json:"nombreEmisor"`
	RutEmisor        string               `json:"rutEmisor"`
	NombreReceptor   string               `json:"nombreReceptor"`
	RutReceptor      string               `json:"rutReceptor"`
	DireccionEntrega string               `json:"direccionEntrega"`
	Items            []models.ProductItem `json:"items"`
	TotalUnidades    *float64             `json:"totalUnidades"`
	Total            *float64             `json:"total"`
	ValidacionRuta   *struct {
		OrigenValidado  *bool   `json:"origenValidado"`
		DestinoValidado *bool   `json:"destinoValidado"`
		AlertaLogistica *string `json:"alertaLogistica"`
	} `json:"validacionRuta"`
}

// ParseGuideResponse decodes a model response into a fully populated
// DispatchGuide, applying defensive defaults: missing items -> empty list,
// missing totals -> 0, missing route validation -> validated with no alert.
func ParseGuideResponse(text string) (*models.DispatchGuide, error) {
	clean := cleanJSONResponse(text)
	if clean == "" {
		clean = "{}"
	}

	var raw rawGuide
	if err := json.Unmarshal([]byte(clean), &raw); err != nil {
		return nil, fmt.Errorf("respuesta del modelo no es JSON válido: %w", err)
	}

	guide := &models.DispatchGuide{
		Folio:            raw.Folio,
		Fecha:            raw.Fecha,
		NombreEmisor:     raw.NombreEmisor,
		RutEmisor:        raw.RutEmisor,
		NombreReceptor:   raw.NombreReceptor,
		RutReceptor:      raw.RutReceptor,
		DireccionEntrega: raw.DireccionEntrega,
		Items:            raw.Items,
		ValidacionRuta: models.RouteValidation{
			OrigenValidado:  true,
			DestinoValidado: true,
		},
	}
	if guide.Items == nil {
		guide.Items = []models.ProductItem{}
	}
	if raw.TotalUnidades != nil {
		guide.TotalUnidades = int(*raw.TotalUnidades)
	}
	if raw.Total != nil {
		guide.Total = *raw.Total
	}
	if v := raw.ValidacionRuta; v != nil {
		if v.OrigenValidado != nil {
			guide.ValidacionRuta.OrigenValidado = *v.OrigenValidado
		}
		if v.DestinoValidado != nil {
			guide.ValidacionRuta.DestinoValidado = *v.DestinoValidado
		}
		if v.AlertaLogistica != nil && *v.AlertaLogistica != "" {
			guide.ValidacionRuta.AlertaLogistica = v.AlertaLogistica
		}
	}
	return guide, nil
}
