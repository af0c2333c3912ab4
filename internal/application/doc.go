// Package application provides application initialization and dependency wiring.
// It encapsulates loading the module catalog and creating the session storage,
// handlers, routers, HTTP server and idle-session janitor, keeping the main
// package focused on CLI parsing and orchestration.
package application
