package main

import (
	"errors"
	"net/http"
	"os"

	"github.com/alecthomas/kong"
	"github.com/gin-gonic/gin"

	"github.com/coreloop/cx/httpserver"
	"github.com/coreloop/cx/httpserver/ginrouter"
	"github.com/coreloop/cx/httpserver/healthcheck"
	"github.com/coreloop/cx/o11y"
	"github.com/coreloop/cx/system"
	"github.com/coreloop/cx/termination"
	"github.com/coreloop/cx/testing/testcontext"
)

type conf struct {
	AdminOnly bool `name:"admin-only" env:"ADMIN_ONLY" default:"false" help:"Only launch a service with an admin server"`
}

func main() {
	c := &conf{}
	kong.Parse(c)

	err := run(c.AdminOnly)
	if err != nil {
		panic(err)
	}
}

func run(adminOnly bool) error {
	ctx := testcontext.Background()

	sys := system.New()

	var err error
	if !adminOnly {
		r := ginrouter.Default(ctx, "server-name-for-o11y")
		r.GET("/api/env", func(c *gin.Context) {
			c.JSON(http.StatusOK, os.Environ())
		})

		_, err = httpserver.Load(ctx, httpserver.Config{
			Name:    "the-server-name",
			Addr:    "localhost:0",
			Handler: r,
		}, sys)
		if err != nil {
			return err
		}
	}

	_, err = healthcheck.Load(ctx, "localhost:0", sys)
	if err != nil {
		return err
	}

	err = sys.Run(ctx, 0)
	switch {
	case errors.Is(err, termination.ErrTerminated):
		break
	case o11y.IsWarning(err):
		break
	case err != nil:
		return err
	}

	return nil
}
