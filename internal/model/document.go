package model

import "time"

type Document struct {
	ID           int64          `json:"id"`
	ContractID   int64          `json:"uccId"`
	DocumentType string         `json:"documentType"`
	DocumentName string         `json:"documentName"`
	KeyName      string         `json:"-"`
	DocumentPath string         `json:"documentPath"`
	Status       ContractStatus `json:"status"`
	IsDeleted    bool           `json:"-"`
	CreatedBy    int64          `json:"createdBy"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// ChangeLog is an append-only field-level audit record. Rows are never
// updated or deleted.
type ChangeLog struct {
	ID            int64     `json:"id"`
	ContractID    string    `json:"uccId"`
	FeatureModule string    `json:"featureModule"`
	ChangedField  string    `json:"changedField"`
	NewValue      string    `json:"newValue"`
	ChangedBy     int64     `json:"changedBy"`
	ChangedAt     time.Time `json:"changedAt"`
}
