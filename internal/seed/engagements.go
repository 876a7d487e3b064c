package seed

import (
	"context"
	"fmt"

	"auditdesk/internal/audit"
	"auditdesk/internal/utils"
	"auditdesk/pkg/types"

	"github.com/sirupsen/logrus"
)

type demoEngagement struct {
	Client   audit.NewClient
	Projects []audit.NewProject
}

var demoEngagements = []demoEngagement{
	{
		Client: audit.NewClient{
			LegalName:      "Northwind Traders Pvt Ltd",
			EntityType:     utils.StringPtr("Non-Public"),
			City:           utils.StringPtr("Pune"),
			Country:        utils.StringPtr("India"),
			BusinessNature: utils.StringPtr("Wholesale distribution"),
			ContactName:    utils.StringPtr("Anita Desai"),
			ContactEmail:   utils.StringPtr("finance@northwind.example"),
		},
		Projects: []audit.NewProject{
			{ProjectType: "Statutory Audit", Period: utils.StringPtr("FY 2024-25")},
			{ProjectType: "Tax Audit", Period: utils.StringPtr("FY 2024-25")},
		},
	},
	{
		Client: audit.NewClient{
			LegalName:      "Contoso Energy Ltd",
			EntityType:     utils.StringPtr("Public"),
			City:           utils.StringPtr("Mumbai"),
			Country:        utils.StringPtr("India"),
			BusinessNature: utils.StringPtr("Power generation"),
			ContactName:    utils.StringPtr("Farhan Ali"),
			ContactEmail:   utils.StringPtr("controller@contoso.example"),
			PriorAuditor:   utils.StringPtr("Lakshmi & Co"),
		},
		Projects: []audit.NewProject{
			{ProjectType: "Internal Audit", Period: utils.StringPtr("H1 2025")},
		},
	},
}

// Engagements creates the demo clients, one project per listed type and the
// standard audit program on each new project. Clients are matched by legal
// name so the command can be re-run.
func Engagements(ctx context.Context, logger *logrus.Logger, svc *audit.Service) error {
	existing, err := svc.Clients(ctx)
	if err != nil {
		return fmt.Errorf("failed to list clients: %w", err)
	}

	byName := make(map[string]*types.Client, len(existing))
	for _, c := range existing {
		byName[c.LegalName] = c
	}

	for _, engagement := range demoEngagements {
		client, ok := byName[engagement.Client.LegalName]
		if ok {
			logger.WithField("client_code", client.Code).Debug("demo client exists, skipping")
			continue
		}

		in := engagement.Client
		client, err = svc.CreateClient(ctx, &in)
		if err != nil {
			return fmt.Errorf("failed to seed client %s: %w", in.LegalName, err)
		}

		for _, p := range engagement.Projects {
			p.ClientID = client.ID
			project, err := svc.CreateProject(ctx, &p)
			if err != nil {
				return fmt.Errorf("failed to seed %s project for %s: %w", p.ProjectType, client.Code, err)
			}

			items, err := svc.ApplyTemplate(ctx, project.ID)
			if err != nil {
				return fmt.Errorf("failed to apply audit program to %s: %w", project.Code, err)
			}

			logger.WithFields(logrus.Fields{
				"project_code": project.Code,
				"items":        len(items),
			}).Info("demo project seeded")
		}
	}

	return nil
}
