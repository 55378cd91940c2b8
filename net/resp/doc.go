// Package resp writes JSON responses.
//
// Success payloads are written as-is; failures are wrapped in an Exception
// envelope carrying a business code from package ecode:
//
//	resp.Success(c.Writer, map[string]string{"status": "ok"})
//	resp.Fail(c.Writer, resp.NotFound("route not found"))
package resp
