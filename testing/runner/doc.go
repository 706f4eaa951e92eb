/*
Package runner allows you to run a binary in an acceptance test (scan output for ports,
wait for start).

It is part of our belief that testing binaries that will be shipping into production
with as little modification as is possible is one of the most effective ways of
producing high value tests.

runner.Stop sends the running process an INT signal, so the service should respond to
that elegantly.
*/
package runner
