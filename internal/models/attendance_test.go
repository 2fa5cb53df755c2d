package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttendanceStatus_CountsAsPresent(t *testing.T) {
	assert.True(t, AttendanceStatusPresent.CountsAsPresent())
	assert.True(t, AttendanceStatusLate.CountsAsPresent())
	assert.False(t, AttendanceStatusAbsent.CountsAsPresent())
	assert.False(t, AttendanceStatus("ON_LEAVE").CountsAsPresent())
}
