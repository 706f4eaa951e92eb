package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coreloop/cx/config/secret"
	"github.com/coreloop/cx/example/contacts"
	"github.com/coreloop/cx/httpresponse"
	"github.com/coreloop/cx/httpserver/ginrouter"
)

type API struct {
	router     *gin.Engine
	store      *contacts.Store
	adminToken secret.String
}

type Options struct {
	Store *contacts.Store
	// AdminToken authorises contact deletion.
	AdminToken secret.String
}

func New(ctx context.Context, opts Options) *API {
	r := ginrouter.Default(ctx, "api")
	a := &API{
		router:     r,
		store:      opts.Store,
		adminToken: opts.AdminToken,
	}

	r.GET("/api/hello", a.getHelloWorld)
	r.POST("/api/contacts", httpresponse.Handler(a.postContact))
	r.GET("/api/contacts", httpresponse.Handler(a.listContacts))
	r.GET("/api/contacts/:id", httpresponse.Handler(a.getContact))
	r.DELETE("/api/contacts/:id", httpresponse.Handler(a.deleteContact))

	return a
}

func (a *API) Handler() http.Handler {
	return a.router
}
