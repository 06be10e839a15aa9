package main

import (
	"bytes"
	"strings"
	"testing"

	appreport "github.com/facultymis/backend/internal/application/report"
	"github.com/facultymis/backend/internal/domain/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintEntities(t *testing.T) {
	var buf bytes.Buffer
	err := printEntities(&buf, []appreport.EntityResponse{
		{ID: "fac_teach", DisplayName: "Teaching Experience", Group: "Faculty", ColumnCount: 6, HasDate: true},
		{ID: "fac_patent", DisplayName: "Patents", Group: "Research", ColumnCount: 8, HasYear: true},
		{ID: "fac_misc", DisplayName: "Misc", Group: "Other", ColumnCount: 2},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "fac_teach")
	assert.True(t, strings.HasSuffix(lines[1], "date"))
	assert.True(t, strings.HasSuffix(lines[2], "year"))
	assert.True(t, strings.HasSuffix(lines[3], "-"))
}

func TestCaller(t *testing.T) {
	flagRole, flagDepartment, flagUser = "HOD", "CS", "u-7"
	t.Cleanup(func() { flagRole, flagDepartment, flagUser = string(report.RoleAdmin), "", "reportctl" })

	c := caller()
	assert.Equal(t, report.RoleHOD, c.Role)
	assert.Equal(t, "CS", c.Department)
	assert.Equal(t, "u-7", c.UserID)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"entities", "units", "export", "summary", "token"} {
		assert.True(t, names[want], want)
	}
}
