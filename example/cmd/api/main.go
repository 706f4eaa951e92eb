package main

import (
	"context"
	"errors"
	"log" //nolint:depguard // non-o11y log is allowed for a top-level fatal
	"time"

	"github.com/alecthomas/kong"

	"github.com/coreloop/cx/config/secret"
	"github.com/coreloop/cx/example/api/api"
	"github.com/coreloop/cx/example/cmd"
	"github.com/coreloop/cx/example/cmd/setup"
	"github.com/coreloop/cx/example/contacts"
	"github.com/coreloop/cx/httpserver"
	"github.com/coreloop/cx/httpserver/healthcheck"
	"github.com/coreloop/cx/o11y"
	"github.com/coreloop/cx/rundef"
	"github.com/coreloop/cx/system"
	"github.com/coreloop/cx/termination"
)

type cli struct {
	setup.CLI

	ShutdownDelay time.Duration `env:"SHUTDOWN_DELAY" default:"5s" help:"Delay shutdown by this amount" hidden:""`
	APIAddr       string        `env:"API_ADDR" default:":8000" help:"The address for the API to listen on"`

	AdminToken        secret.String `env:"ADMIN_TOKEN" help:"Token that authorises contact deletion"`
	MaxContactsPerOrg int           `env:"MAX_CONTACTS_PER_ORG" default:"100" help:"Contact limit for a single org"`
}

func main() {
	err := run(cmd.Version, cmd.Date)
	if err != nil && !errors.Is(err, termination.ErrTerminated) {
		log.Fatal("Unexpected Error: ", err)
	}
	log.Println("exited 0")
}

func run(version, date string) (err error) {
	cli := cli{}
	kong.Parse(&cli)

	ctx, o11yCleanup, err := setup.LoadO11y(version, "api", cli.CLI)
	if err != nil {
		return err
	}
	defer o11yCleanup(ctx)

	ctx, runSpan := o11y.StartSpan(ctx, "main: run")
	defer o11y.End(runSpan, &err)

	o11y.Log(ctx, "starting api",
		o11y.Field("version", version),
		o11y.Field("date", date),
	)

	err = rundef.Defaults(ctx)
	if err != nil {
		return err
	}

	sys := system.New()
	defer sys.Cleanup(ctx)

	err = loadAPI(ctx, cli, sys)
	if err != nil {
		return err
	}

	// Should be last so it collects all the health checks
	_, err = healthcheck.Load(ctx, cli.AdminAddr, sys)
	if err != nil {
		return err
	}

	return sys.Run(ctx, cli.ShutdownDelay)
}

func loadAPI(ctx context.Context, cli cli, sys *system.System) error {
	txm, err := setup.LoadTxManager(ctx, cli.CLI, sys)
	if err != nil {
		return err
	}

	a := api.New(ctx, api.Options{
		Store:      contacts.NewStore(txm, cli.MaxContactsPerOrg),
		AdminToken: cli.AdminToken,
	})

	_, err = httpserver.Load(ctx, httpserver.Config{
		Name:    "api",
		Addr:    cli.APIAddr,
		Handler: a.Handler(),
	}, sys)
	return err
}
