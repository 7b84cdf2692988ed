// Package orchestrator owns the mapping from service names to live process
// handles. It delegates the actual spawning and termination to the
// language runtime plugins and concentrates the bookkeeping: idempotent
// starts, forgetting handles on stop, and a consistent snapshot for status
// listings.
package orchestrator
