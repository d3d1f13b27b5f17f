package model

// ContractSource identifies which backing source produced a list row.
type ContractSource string

const (
	SourceSegments ContractSource = "SEGMENTS"
	SourceMaster   ContractSource = "MASTER"
)

// ContractRow is one row of the blended contract list. Source A rows carry
// geometry; Source B rows carry resolved office and work-type names.
type ContractRow struct {
	Source        ContractSource `json:"source"`
	UCC           string         `json:"ucc"`
	ProjectName   string         `json:"projectName"`
	PIU           *string        `json:"piu"`
	RO            *string        `json:"ro"`
	TypeOfWork    *string        `json:"typeOfWork"`
	StretchID     *string        `json:"stretchId"`
	StretchName   string         `json:"stretchName"`
	TotalLength   *float64       `json:"totalLength"`
	RevisedLength *float64       `json:"revisedLength"`
	CorridorCode  *string        `json:"corridorCode"`
	PhaseCode     *string        `json:"phaseCode"`
	Scheme        *string        `json:"scheme"`
	ProgramName   *string        `json:"programName"`
	ProjectStatus string         `json:"projectStatus"`
	GeoJSON       *string        `json:"geojson,omitempty"`
	EditCount     *int64         `json:"editCount,omitempty"`
}

// Page is the pagination envelope shared by every list operation.
type Page struct {
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalCount int64         `json:"totalCount"`
	TotalPages int           `json:"totalPages"`
	Message    string        `json:"message,omitempty"`
	Rows       []ContractRow `json:"rows"`
}
