package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCivilDateWireFormat(t *testing.T) {
	date := NewCivilDate(2026, time.March, 9)

	raw, err := json.Marshal(date)
	require.NoError(t, err)
	require.Equal(t, `"2026-03-09"`, string(raw))

	var decoded CivilDate
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.True(t, date.Equal(decoded))
}

func TestCivilDateOfTruncatesToUTCDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// 01:30 IST on March 10 is still March 9 in UTC.
	local := time.Date(2026, time.March, 10, 1, 30, 0, 0, loc)
	require.Equal(t, "2026-03-09", CivilDateOf(local).String())
}

func TestCivilDateAddDays(t *testing.T) {
	date := NewCivilDate(2026, time.February, 27)
	require.Equal(t, "2026-03-01", date.AddDays(2).String())
	require.Equal(t, time.Sunday, date.AddDays(2).Weekday())
}

func TestParseCivilDateRejectsGarbage(t *testing.T) {
	_, err := ParseCivilDate("09-03-2026")
	require.Error(t, err)
}
