/*
Package httpserver contains helpers for creating zero-downtime REST APIs.

There are tools for:
- observability (both for requests and connection info)
- health checks
*/
package httpserver
