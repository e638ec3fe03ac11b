package taskname

const (
	// Material tasks
	MaterialRecorded = "material:recorded"

	// Ledger tasks
	LedgerReconcile = "ledger:reconcile"
)
