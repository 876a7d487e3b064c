package main

import (
	"fmt"
	"net/http"
	"os"

	"auditdesk/internal/apiclient"
	"auditdesk/pkg/types"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var apiFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "api-url",
		Usage:   "Base URL of the auditdesk API",
		Value:   "http://localhost:5000",
		EnvVars: []string{"AUDITDESK_API_URL"},
	},
	&cli.StringFlag{
		Name:  "session-file",
		Usage: "Where the login session is stored (default: user config dir)",
	},
}

func newAPIClient(c *cli.Context) (*apiclient.Client, error) {
	path := c.String("session-file")
	if path == "" {
		var err error
		path, err = apiclient.DefaultSessionPath()
		if err != nil {
			return nil, err
		}
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.WarnLevel)

	return apiclient.New(logger, c.String("api-url"), apiclient.NewSessionFile(path))
}

var loginCommand = &cli.Command{
	Name:  "login",
	Usage: "Log in to the API and store the session",
	Flags: append([]cli.Flag{
		&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
		&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"AUDITDESK_PASSWORD"}},
	}, apiFlags...),
	Action: func(c *cli.Context) error {
		client, err := newAPIClient(c)
		if err != nil {
			return err
		}

		user, err := client.Login(c.Context, c.String("email"), c.String("password"))
		if err != nil {
			return err
		}

		fmt.Printf("Logged in as %s (%s)\n", user.FullName(), user.Role)
		return nil
	},
}

var logoutCommand = &cli.Command{
	Name:  "logout",
	Usage: "Forget the stored session",
	Flags: apiFlags,
	Action: func(c *cli.Context) error {
		client, err := newAPIClient(c)
		if err != nil {
			return err
		}
		return client.Logout()
	},
}

var summaryCommand = &cli.Command{
	Name:  "summary",
	Usage: "Print the dashboard summary and your pending tasks",
	Flags: apiFlags,
	Action: func(c *cli.Context) error {
		client, err := newAPIClient(c)
		if err != nil {
			return err
		}

		var summary types.DashboardSummary
		if err := client.Do(c.Context, http.MethodGet, "/api/dashboard/summary", nil, &summary); err != nil {
			return err
		}

		var tasks []*types.PendingTask
		if err := client.Do(c.Context, http.MethodGet, "/api/dashboard/pending-tasks", nil, &tasks); err != nil {
			return err
		}

		printer := pp.New()
		printer.SetOutput(os.Stdout)
		printer.Println(summary)
		printer.Println(tasks)
		return nil
	},
}
