/*
Package db contains a variety of tools for working safely with databases.

There are tools for:
- transactions (including rollbacks on error or panic)
- observability (both for queries and connection info)
- health checks
*/
package db
