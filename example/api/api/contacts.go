package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/coreloop/cx/example/contacts"
	"github.com/coreloop/cx/httpresponse"
)

var validate = validator.New()

func (a *API) postContact(c *gin.Context) (*httpresponse.Response, error) {
	type request struct {
		Org   string `json:"org" validate:"required"`
		Name  string `json:"name" validate:"required"`
		Email string `json:"email" validate:"required,email"`
	}
	type response struct {
		ID uuid.UUID `json:"id"`
	}

	ctx := c.Request.Context()

	var req request
	err := c.ShouldBindJSON(&req)
	if err != nil {
		return nil, httpresponse.BadRequest("invalid request body")
	}

	err = validate.Struct(req)
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, httpresponse.FromValidation(verrs)
		}
		return nil, err
	}

	id, err := a.store.Add(ctx, contacts.ToAdd(req))
	switch {
	case errors.Is(err, contacts.ErrAlreadyExists):
		return nil, httpresponse.Conflict("a contact with that email already exists")
	case err != nil:
		return nil, err
	}

	return httpresponse.OK(response{ID: id}), nil
}

func (a *API) getContact(c *gin.Context) (*httpresponse.Response, error) {
	type response struct {
		ID    uuid.UUID `json:"id"`
		Org   string    `json:"org"`
		Name  string    `json:"name"`
		Email string    `json:"email"`
	}

	ctx := c.Request.Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, httpresponse.BadRequest("invalid contact id")
	}

	contact, err := a.store.ByID(ctx, id)
	switch {
	case errors.Is(err, contacts.ErrNotFound):
		return nil, httpresponse.NotFound("contact not found")
	case err != nil:
		return nil, err
	}

	return httpresponse.OK(response(*contact)), nil
}

func (a *API) listContacts(c *gin.Context) (*httpresponse.Response, error) {
	type contact struct {
		ID    uuid.UUID `json:"id"`
		Org   string    `json:"org"`
		Name  string    `json:"name"`
		Email string    `json:"email"`
	}
	type response struct {
		Contacts []contact `json:"contacts"`
	}

	ctx := c.Request.Context()

	org := c.Query("org")
	if org == "" {
		return nil, httpresponse.BadRequest("org is required")
	}

	list, err := a.store.List(ctx, org, c.Query("name"))
	if err != nil {
		return nil, err
	}

	res := response{Contacts: make([]contact, 0, len(list))}
	for _, l := range list {
		res.Contacts = append(res.Contacts, contact(l))
	}

	return httpresponse.OK(res), nil
}

func (a *API) deleteContact(c *gin.Context) (*httpresponse.Response, error) {
	ctx := c.Request.Context()

	if c.GetHeader("Authorization") != "Bearer "+a.adminToken.Raw() {
		return nil, httpresponse.Unauthorized("admin token required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, httpresponse.BadRequest("invalid contact id")
	}

	err = a.store.Delete(ctx, id)
	switch {
	case errors.Is(err, contacts.ErrNotFound):
		return nil, httpresponse.NotFound("contact not found")
	case err != nil:
		return nil, err
	}

	return httpresponse.New(http.StatusNoContent).Finish(), nil
}
