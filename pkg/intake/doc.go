// Package intake holds the service request form: its values, presence
// validation, the mapping onto the customers table, and the submission state
// machine that writes one row per request.
package intake
