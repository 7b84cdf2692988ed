// Package language holds the built-in runtime plugins shipped with lychee
// so a workspace works out of the box: Python services (uv-managed
// virtualenvs, fastapi/flask) and TypeScript services (npm, the common
// frontend/backend frameworks). Everything they do with the OS goes
// through the process supervisor.
package language
