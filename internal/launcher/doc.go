// Package launcher starts the web server that hosts the workshop frontend.
//
// Two strategies implement Launcher:
//   - StaticLauncher serves the build output (or the project directory when no
//     build exists) from an in-process net/http file server.
//   - DevLauncher verifies the JavaScript runtime, installs dependencies when
//     the marker directory is missing, spawns the dev server through the
//     platform shell, and discovers its URL from the "Local:" line it prints.
//
// Both return a Server handle the supervisor waits on and stops.
package launcher
