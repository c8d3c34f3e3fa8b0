// Package credential supplies portal logins to the run pipeline.
//
// A Provider is asked once per connection attempt. Attempt 1 is the first
// login; every later attempt follows a 401 from the portal. EnvProvider only
// answers the first attempt so a rejected login from the environment falls
// through to the interactive prompt.
package credential
