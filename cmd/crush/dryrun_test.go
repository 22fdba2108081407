package main

import (
	"testing"

	"crush/internal/lang"
)

func TestDryRunJobListHandlesEmptyAndMultiStage(t *testing.T) {
	dryRunJobList(lang.JobList{})

	jobs := lang.JobList{Jobs: []lang.Job{
		{Calls: []lang.CallDefinition{
			{Arguments: []lang.ArgumentDefinition{{}}},
			{},
		}},
	}}
	dryRunJobList(jobs)
}
