// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// GraphService submits builds to a BuildExecutor with latest-wins
// supersession, LayoutSession owns the force simulation of one loaded
// graph, and SettingsService resolves validated configuration.
package services
