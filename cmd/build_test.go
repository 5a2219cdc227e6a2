package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyscan/schema"
)

func TestReportExitError(t *testing.T) {
	ok := &schema.BuildReport{Success: true}
	assert.NoError(t, reportExitError(ok))

	failed := &schema.BuildReport{
		Success: false,
		Results: map[schema.Ecosystem]*schema.BuildResult{
			schema.PythonEcosystem: {Ecosystem: schema.PythonEcosystem, Error: "exit status 1"},
		},
	}
	err := reportExitError(failed)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBuildFailed)
}
