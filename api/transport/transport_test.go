package transport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskdesk/domain"
)

func TestParseError(t *testing.T) {
	require.Equal(t, "Task not found", ParseError([]byte(`{"error":"Task not found"}`)))
	require.Empty(t, ParseError([]byte(`<html>bad gateway</html>`)))
	require.Empty(t, ParseError([]byte(`{"error":{"code":42}}`)))
	require.Empty(t, ParseError(nil))
}

func TestTaskRequest_OmitsUnsetFields(t *testing.T) {
	body, err := json.Marshal(NewTaskRequest(domain.TaskInput{Title: "Pay rent", Priority: domain.PriorityHigh}))
	require.NoError(t, err)
	require.JSONEq(t, `{"title":"Pay rent","priority":"high"}`, string(body))
}

func TestTaskPatchRequest_SendsOnlySetFields(t *testing.T) {
	status := domain.TaskCompleted
	empty := ""
	body, err := json.Marshal(NewTaskPatchRequest(domain.TaskPatch{Status: &status, Description: &empty}))
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"completed","description":""}`, string(body))
}
