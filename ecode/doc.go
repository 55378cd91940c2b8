// Package ecode defines the business error codes carried in JSON error envelopes.
package ecode
