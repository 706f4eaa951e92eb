/*
Package healthcheck contains a simple healthcheck handler. In addition to supporting the
healthchecks that various other packages in ex produce, it also allows access to the Go
runtime's standard pprof functionality.
*/
package healthcheck
