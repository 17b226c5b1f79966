// Package supabase is a minimal PostgREST client for the two calls the intake
// service makes: invoking a remote procedure and inserting a row.
package supabase
