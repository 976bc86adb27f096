package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/bouncr/iam/cmd/app/commands"
	"github.com/bouncr/iam/internal/app"
	"github.com/bouncr/iam/internal/config"
)

func getAdminCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-admin",
			Usage: "Seed the administration realm and grant it to an account",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "account",
					Aliases:  []string{"a"},
					Required: true,
					Usage:    "Administrator account name",
				},
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Administrator email address",
				},
				&cli.StringFlag{
					Name:    "name",
					Aliases: []string{"n"},
					Usage:   "Administrator display name",
				},
				&cli.StringFlag{
					Name:    "password",
					Aliases: []string{"p"},
					Sources: cli.EnvVars("ADMIN_PASSWORD"),
					Usage:   "Administrator password (prompted for a new account when omitted)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				bootstrap, err := container.BootstrapUseCase()
				if err != nil {
					return err
				}
				credentials, err := container.CredentialUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateAdmin(
					ctx,
					bootstrap,
					credentials,
					container.Logger(),
					commands.CreateAdminInput{
						Application: cfg.AdminApplication,
						Realm:       cfg.AdminRealm,
						Account:     cmd.String("account"),
						Email:       cmd.String("email"),
						Name:        cmd.String("name"),
						Password:    cmd.String("password"),
					},
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
	}
}
