package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDates(t *testing.T) {
	dates, err := ParseDates(" 2024-08-03, 2024-08-13,,2024-08-25 ")
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2024, 8, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 8, 13, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 8, 25, 0, 0, 0, 0, time.UTC),
	}, dates)

	_, err = ParseDates("03/08/2024")
	assert.Error(t, err)

	_, err = ParseDates(" , ")
	assert.Error(t, err)
}
