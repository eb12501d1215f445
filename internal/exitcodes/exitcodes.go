package exitcodes

// Exit codes for the tree-reaper binaries
// These codes form the operational contract with CI/CD and operators
const (
	Success         = 0 // Successful execution
	InvalidConfig   = 2 // Configuration file invalid or missing
	SafetyViolation = 3 // Safety policy blocked an operation
	RuntimeError    = 4 // Runtime error during execution
)
