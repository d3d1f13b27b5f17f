package model

// Stretch is read-only spatial reference data. Geometry stays in the
// database; LengthKm and GeoJSON are computed projections.
type Stretch struct {
	StretchID    string  `json:"stretchId"`
	StretchCode  string  `json:"stretchCode"`
	PhaseCode    string  `json:"phaseCode"`
	CorridorCode string  `json:"corridorCode"`
	ProjectName  string  `json:"projectName"`
	ProgramName  string  `json:"programName"`
	Phase        string  `json:"phase"`
	Scheme       string  `json:"scheme"`
	NH           string  `json:"nh"`
	CorridorID   string  `json:"corridorId"`
	LengthKm     float64 `json:"lengthKm"`
	GeoJSON      string  `json:"geojson,omitempty"`
}

type Office struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"` // "PIU" or "RO"
	ParentID *int64 `json:"parentId,omitempty"`
}

type State struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}
