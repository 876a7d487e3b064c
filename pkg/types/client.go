package types

import "time"

type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "Active"
	ClientStatusInactive ClientStatus = "Inactive"
	ClientStatusOnHold   ClientStatus = "On-Hold"
)

func (s ClientStatus) Valid() bool {
	switch s {
	case ClientStatusActive, ClientStatusInactive, ClientStatusOnHold:
		return true
	}
	return false
}

type Client struct {
	ID                string       `db:"id" json:"id"`
	Code              string       `db:"client_code" json:"clientCode"`
	LegalName         string       `db:"legal_name" json:"legalName"`
	EntityType        *string      `db:"entity_type" json:"entityType,omitempty"`
	AddressLine1      *string      `db:"address_line1" json:"addressLine1,omitempty"`
	AddressLine2      *string      `db:"address_line2" json:"addressLine2,omitempty"`
	City              *string      `db:"city" json:"city,omitempty"`
	State             *string      `db:"state" json:"state,omitempty"`
	Country           *string      `db:"country" json:"country,omitempty"`
	ZipCode           *string      `db:"zip_code" json:"zipCode,omitempty"`
	IncorporationDate *time.Time   `db:"incorporation_date" json:"incorporationDate,omitempty"`
	BusinessNature    *string      `db:"business_nature" json:"businessNature,omitempty"`
	TaxID             *string      `db:"tax_id" json:"taxId,omitempty"`
	ContactName       *string      `db:"contact_name" json:"contactName,omitempty"`
	ContactEmail      *string      `db:"contact_email" json:"contactEmail,omitempty"`
	ContactPhone      *string      `db:"contact_phone" json:"contactPhone,omitempty"`
	PriorAuditor      *string      `db:"prior_auditor" json:"priorAuditor,omitempty"`
	Status            ClientStatus `db:"status" json:"status"`
	CreatedAt         time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time    `db:"updated_at" json:"updatedAt"`
}

// ClientUpdate carries the mutable client fields. Nil fields are left alone.
type ClientUpdate struct {
	Status       *ClientStatus `json:"status"`
	ContactName  *string       `json:"contactName"`
	ContactEmail *string       `json:"contactEmail"`
	ContactPhone *string       `json:"contactPhone"`
}
