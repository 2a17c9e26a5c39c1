package main

// ============================================================================
// CROSSTAB CLI — Pivot Tables for Any CSV
// ============================================================================

func main() {
	Execute()
}
