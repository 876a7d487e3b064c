package seed

import (
	"context"
	"errors"
	"fmt"

	"auditdesk/internal/audit"
	"auditdesk/internal/utils"
	"auditdesk/pkg/types"

	"github.com/sirupsen/logrus"
)

type demoUser struct {
	Email      string
	FirstName  string
	LastName   string
	Role       types.Role
	Department string
}

var demoUsers = []demoUser{
	{Email: "admin@auditdesk.local", FirstName: "Asha", LastName: "Raman", Role: types.RoleAdmin, Department: "Operations"},
	{Email: "partner@auditdesk.local", FirstName: "Vikram", LastName: "Mehta", Role: types.RolePartner, Department: "Assurance"},
	{Email: "manager@auditdesk.local", FirstName: "Priya", LastName: "Nair", Role: types.RoleManager, Department: "Assurance"},
	{Email: "senior@auditdesk.local", FirstName: "Rohan", LastName: "Iyer", Role: types.RoleSeniorAuditor, Department: "Assurance"},
	{Email: "junior@auditdesk.local", FirstName: "Meera", LastName: "Kapoor", Role: types.RoleJuniorAuditor, Department: "Assurance"},
	{Email: "junior2@auditdesk.local", FirstName: "Kabir", LastName: "Shah", Role: types.RoleJuniorAuditor, Department: "Tax"},
}

// Users registers the demo accounts with password. Accounts that already
// exist are left untouched.
func Users(ctx context.Context, logger *logrus.Logger, svc *audit.Service, password string) error {
	created := 0
	for _, u := range demoUsers {
		_, err := svc.RegisterUser(ctx, &audit.NewUser{
			Email:      u.Email,
			Password:   password,
			FirstName:  u.FirstName,
			LastName:   u.LastName,
			Role:       u.Role,
			Department: utils.StringPtr(u.Department),
		})
		if errors.Is(err, types.ErrConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
		created++
	}

	logger.WithField("created", created).Info("demo users seeded")
	return nil
}
