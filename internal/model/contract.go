package model

import "time"

type ContractStatus string

const (
	StatusDraft           ContractStatus = "DRAFT"
	StatusBalanceForAward ContractStatus = "BALANCE_FOR_AWARD"
	StatusAwarded         ContractStatus = "AWARDED"
	StatusApproved        ContractStatus = "APPROVED"
	StatusRejected        ContractStatus = "REJECTED"
)

// Terminal reports whether no further status transition is allowed.
func (s ContractStatus) Terminal() bool {
	return s == StatusAwarded || s == StatusApproved || s == StatusRejected
}

// Contract is a row of ucc_master. Identity is the numeric draft id until
// promotion assigns PermanentCode.
type Contract struct {
	ID                   int64
	PermanentCode        *string
	ContractName         string
	ShortName            string
	Status               ContractStatus
	PhaseCode            *int
	CorridorCode         *int
	ImplementationModeID *int64
	SchemeID             *int64
	ROID                 *int64
	StateID              *int64
	ContractLength       float64
	StretchName          string
	CreatedBy            int64
	CreatedAt            time.Time
	UpdatedBy            *int64
	UpdatedAt            *time.Time
}

type ImplementationMode struct {
	ID       int64  `json:"id"`
	ModeName string `json:"modeName"`
}
