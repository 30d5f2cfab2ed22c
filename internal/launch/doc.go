// Package launch opens installed applications.
//
// Browser hands a URL to the platform opener (xdg-open, open or
// rundll32) or to a user-configured command, without waiting for it to exit.
// Recording wraps any navigator and keeps launch statistics in the config
// registry.
package launch
