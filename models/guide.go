package models

// ProductItem is one line item printed on a dispatch guide.
type ProductItem struct {
	Descripcion string  `json:"descripcion"`
	Cantidad    float64 `json:"cantidad"`
}

// RouteValidation carries the route checks the extraction model performs
// on the document (stamps, crossed signatures, destination mismatches).
type RouteValidation struct {
	OrigenValidado  bool    `json:"origenValidado"`
	DestinoValidado bool    `json:"destinoValidado"`
	AlertaLogistica *string `json:"alertaLogistica"`
}

// DispatchGuide is the structured result extracted from a scanned
// dispatch-guide document. TotalUnidades prefers the warehouse keeper's
// handwritten count over the printed one; that priority lives in the
// model instruction, not here.
type DispatchGuide struct {
	Folio            string          `json:"folio"`
	Fecha            string          `json:"fecha"`
	NombreEmisor     string          `json:"nombreEmisor"`
	RutEmisor        string          `json:"rutEmisor"`
	NombreReceptor   string          `json:"nombreReceptor"`
	RutReceptor      string          `json:"rutReceptor"`
	DireccionEntrega string          `json:"direccionEntrega"`
	Items            []ProductItem   `json:"items"`
	TotalUnidades    int             `json:"totalUnidades"`
	Total            float64         `json:"total"`
	ValidacionRuta   RouteValidation `json:"validacionRuta"`
}
