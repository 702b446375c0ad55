package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumOrdinalsFollowDeclarationOrder(t *testing.T) {
	// listing sorts on these ordinals
	assert.True(t, StatusTodo < StatusInProgress)
	assert.True(t, StatusInProgress < StatusInReview)
	assert.True(t, StatusInReview < StatusDone)
	assert.True(t, PriorityLow < PriorityMedium)
	assert.True(t, PriorityMedium < PriorityHigh)
	assert.True(t, PriorityHigh < PriorityUrgent)
}

func TestTaskJSONUsesNames(t *testing.T) {
	task := Task{Title: "Write spec", Status: StatusInReview, Priority: PriorityUrgent}

	data, err := json.Marshal(task)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"IN_REVIEW"`)
	assert.Contains(t, string(data), `"priority":"URGENT"`)

	var back Task
	require.NoError(t, json.Unmarshal([]byte(`{"status":"done","priority":"LOW"}`), &back))
	assert.Equal(t, StatusDone, back.Status)
	assert.Equal(t, PriorityLow, back.Priority)
}

func TestParseRejectsUnknownNames(t *testing.T) {
	_, err := ParseRole("SUPERUSER")
	require.Error(t, err)
	_, err = ParseTaskStatus("")
	require.Error(t, err)

	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)
	assert.Equal(t, "UNKNOWN(0)", Role(0).String())
}

func TestUnknownNameInJSONIsEnumError(t *testing.T) {
	var task Task
	err := json.Unmarshal([]byte(`{"priority":"SOMEDAY"}`), &task)
	var enumErr *EnumError
	require.True(t, errors.As(err, &enumErr), "got %v", err)
	assert.Equal(t, "priority", enumErr.Kind)
	assert.Equal(t, "SOMEDAY", enumErr.Value)
	assert.Equal(t, []string{"LOW", "MEDIUM", "HIGH", "URGENT"}, enumErr.Allowed)
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&Task{DueDate: &past, Status: StatusTodo}).IsOverdue(now))
	assert.False(t, (&Task{DueDate: &past, Status: StatusDone}).IsOverdue(now))
	assert.False(t, (&Task{DueDate: &future, Status: StatusTodo}).IsOverdue(now))
	assert.False(t, (&Task{Status: StatusTodo}).IsOverdue(now))
}
