package model

import "time"

type IssueKind string

const (
	IssueSegment   IssueKind = "SEGMENT"
	IssueBlackSpot IssueKind = "BLACK_SPOT"
)

// Chainage is a distance-along-road position: kilometre+metre paired with a
// coordinate.
type Chainage struct {
	Kilometer int     `json:"kilometer"`
	Meter     int     `json:"meter"`
	Lat       float64 `json:"lat"`
	Long      float64 `json:"long"`
}

// WorkLocation is a row of ucc_work_locations, owned by exactly one contract.
// End* fields are set only for segment entries.
type WorkLocation struct {
	ID            int64
	ContractID    int64
	WorkTypeID    int64
	IssueKind     IssueKind
	StartKm       int
	StartMetre    int
	StartLat      float64
	StartLong     float64
	EndKm         *int
	EndMetre      *int
	EndLat        *float64
	EndLong       *float64
	Lane          int
	Status        ContractStatus
	CreatedBy     int64
	CreatedAt     time.Time
	UpdatedBy     *int64
	UpdatedAt     *time.Time
}

type WorkType struct {
	ID         int64
	NameOfWork string
}

// NHDetail is a national-highway span of a draft.
type NHDetail struct {
	ID            int64          `json:"id"`
	ContractID    int64          `json:"uccId"`
	NHNumber      string         `json:"nhNumber"`
	StartChainage float64        `json:"startChainage"`
	EndChainage   float64        `json:"endChainage"`
	Length        float64        `json:"length"`
	Status        ContractStatus `json:"status"`
	CreatedBy     int64          `json:"-"`
	CreatedAt     time.Time      `json:"-"`
}

// NHStateDetail records the distance a contract runs through one state. The
// state with the greatest distance supplies the permanent-code state code.
type NHStateDetail struct {
	ID            int64
	ContractID    int64
	StateID       int64
	DistrictIDs   string // comma-joined district ids
	StateDistance float64
	CreatedBy     int64
	CreatedAt     time.Time
}
