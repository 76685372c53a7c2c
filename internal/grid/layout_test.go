package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/salonboard/internal/appointment"
)

var roster = []appointment.StaffMember{
	{ID: "s1", Name: "Ana", DisplayColor: "#f38ba8"},
	{ID: "s2", Name: "Bea", DisplayColor: "#89b4fa"},
}

func TestBuildLayout_GroupsByRosterOrder(t *testing.T) {
	cancelled := apt("c", "s1", "12:00", 30)
	cancelled.Status = appointment.StatusCancelled
	otherDay := apt("d", "s1", "12:00", 30)
	otherDay.Date = day.AddDate(0, 0, -1)

	apts := []*appointment.Appointment{
		apt("b2", "s2", "09:00", 30),
		apt("a2", "s1", "11:00", 30),
		apt("a1", "s1", "09:00:00", 60),
		apt("u1", "", "10:00", 30),
		apt("o1", "gone", "13:00", 30),
		cancelled,
		otherDay,
	}

	l := BuildLayout(apts, roster, DefaultGeometry(), LayoutOptions{Date: day, DefaultDuration: 60})

	require.Len(t, l.Columns, 3)
	assert.Equal(t, "s1", l.Columns[0].Staff.ID)
	assert.Equal(t, "s2", l.Columns[1].Staff.ID)
	assert.True(t, l.Columns[2].IsUnassigned())

	assert.Equal(t, []string{"a1", "a2"}, ids(l.Columns[0]))
	assert.Equal(t, []string{"b2"}, ids(l.Columns[1]))
	assert.Equal(t, []string{"u1", "o1"}, ids(l.Columns[2]))
	assert.Equal(t, 5, l.Count())

	first := l.Columns[0].Blocks[0]
	assert.Equal(t, 120, first.Top)
	assert.Equal(t, 120, first.Height)
	assert.Equal(t, 9*60, first.Start)
	assert.Equal(t, 10*60, first.End)
}

func TestBuildLayout_TiesOrderedByID(t *testing.T) {
	apts := []*appointment.Appointment{apt("z", "s1", "09:00", 30), apt("m", "s1", "09:00", 30)}
	l := BuildLayout(apts, roster, DefaultGeometry(), LayoutOptions{Date: day})
	assert.Equal(t, []string{"m", "z"}, ids(l.Columns[0]))
}

func TestBuildLayout_StaffFilter(t *testing.T) {
	apts := []*appointment.Appointment{apt("a", "s1", "09:00", 30), apt("b", "s2", "09:00", 30)}
	l := BuildLayout(apts, roster, DefaultGeometry(), LayoutOptions{Date: day, Staff: []string{"s2"}})

	require.Len(t, l.Columns, 2)
	assert.Equal(t, "s2", l.Columns[0].Staff.ID)
	assert.Equal(t, 1, l.Count())
	assert.Equal(t, 0, l.ColumnIndex("s2"))
	assert.Equal(t, -1, l.ColumnIndex("s1"))
}

func TestBuildLayout_PendingAndLookup(t *testing.T) {
	apts := []*appointment.Appointment{apt("a", "s1", "09:00", 30), apt("b", "s2", "10:00", 5)}
	l := BuildLayout(apts, roster, DefaultGeometry(), LayoutOptions{
		Date:    day,
		Pending: func(id string) bool { return id == "b" },
	})

	col, block, ok := l.Find("b")
	require.True(t, ok)
	assert.Equal(t, 1, col)
	assert.True(t, block.Pending)
	assert.Equal(t, DefaultMinBlockHeight, block.Height)

	hit, ok := l.BlockAt(0, 130)
	require.True(t, ok)
	assert.Equal(t, "a", hit.Appointment.ID)
	_, ok = l.BlockAt(0, 180)
	assert.False(t, ok)

	_, _, ok = l.Find("missing")
	assert.False(t, ok)
}

func ids(c Column) []string {
	out := make([]string, 0, len(c.Blocks))
	for _, b := range c.Blocks {
		out = append(out, b.Appointment.ID)
	}
	return out
}
