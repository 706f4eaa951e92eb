/*
Package httpresponse turns handler outcomes into HTTP responses.

Handlers build a Response (status, ordered headers, optional JSON body) on
success, and on failure return one of a small fixed set of error kinds.
Render maps every error kind to its response in one place, so status codes
and body shapes are never decided at individual call sites.
*/
package httpresponse
