package main

import (
	"fmt"

	"crush/internal/lang"
)

// dryRunJobList prints the compiled Job list without running it: one
// line per pipeline stage, showing the call and its argument count
// rather than executing anything.
func dryRunJobList(jobs lang.JobList) {
	for i, job := range jobs.Jobs {
		fmt.Printf("[dry-run] job %d\n", i)
		for j, call := range job.Calls {
			if j > 0 {
				fmt.Printf("  | %s\n", call)
			} else {
				fmt.Printf("  %s\n", call)
			}
		}
	}
}
