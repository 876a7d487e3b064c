package audit

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"auditdesk/internal/utils"
	"auditdesk/pkg/types"
)

type NewClient struct {
	LegalName         string  `json:"legalName"`
	EntityType        *string `json:"entityType"`
	AddressLine1      *string `json:"addressLine1"`
	AddressLine2      *string `json:"addressLine2"`
	City              *string `json:"city"`
	State             *string `json:"state"`
	Country           *string `json:"country"`
	ZipCode           *string `json:"zipCode"`
	IncorporationDate *string `json:"incDate"`
	BusinessNature    *string `json:"businessNature"`
	TaxID             *string `json:"taxId"`
	ContactName       *string `json:"contactName"`
	ContactEmail      *string `json:"contactEmail"`
	ContactPhone      *string `json:"contactPhone"`
	PriorAuditor      *string `json:"priorAuditor"`
}

func (s *Service) Clients(ctx context.Context) ([]*types.Client, error) {
	return s.store.Clients(ctx)
}

func (s *Service) Client(ctx context.Context, clientID string) (*types.Client, error) {
	return s.store.Client(ctx, clientID)
}

// CreateClient stores a new Active client. The store assigns the client code.
func (s *Service) CreateClient(ctx context.Context, in *NewClient) (*types.Client, error) {
	legalName := strings.TrimSpace(in.LegalName)
	if legalName == "" {
		return nil, validationError("legal name is required")
	}

	email := trimmed(in.ContactEmail)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	incorporated, err := parseDate("incorporation date", in.IncorporationDate)
	if err != nil {
		return nil, err
	}

	now := s.now()
	client := &types.Client{
		ID:                utils.NanoID(),
		LegalName:         legalName,
		EntityType:        trimmed(in.EntityType),
		AddressLine1:      trimmed(in.AddressLine1),
		AddressLine2:      trimmed(in.AddressLine2),
		City:              trimmed(in.City),
		State:             trimmed(in.State),
		Country:           trimmed(in.Country),
		ZipCode:           trimmed(in.ZipCode),
		IncorporationDate: incorporated,
		BusinessNature:    trimmed(in.BusinessNature),
		TaxID:             trimmed(in.TaxID),
		ContactName:       trimmed(in.ContactName),
		ContactEmail:      email,
		ContactPhone:      trimmed(in.ContactPhone),
		PriorAuditor:      trimmed(in.PriorAuditor),
		Status:            types.ClientStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.store.CreateClient(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.logger.WithField("client_id", client.ID).WithField("client_code", client.Code).Info("client created")
	return client, nil
}

func (s *Service) UpdateClient(ctx context.Context, clientID string, update *types.ClientUpdate) (*types.Client, error) {
	if update.Status != nil && !update.Status.Valid() {
		return nil, validationError("invalid client status %q", *update.Status)
	}

	if update.ContactEmail != nil && strings.TrimSpace(*update.ContactEmail) != "" {
		if err := validateEmail(update.ContactEmail); err != nil {
			return nil, err
		}
	}

	return s.store.UpdateClient(ctx, clientID, update)
}

// DeleteClient refuses with a conflict while any project references the client.
func (s *Service) DeleteClient(ctx context.Context, clientID string) error {
	return s.store.DeleteClient(ctx, clientID)
}

func validateEmail(email *string) error {
	if email == nil {
		return nil
	}

	if _, err := mail.ParseAddress(*email); err != nil {
		return validationError("contact email %q is not a valid address", *email)
	}
	return nil
}
