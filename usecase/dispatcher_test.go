package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskdesk/domain"
)

func TestDispatcher_RoutesByName(t *testing.T) {
	d := NewDispatcher()
	var got CredentialsPayload
	d.RegisterCommand(CmdSignin, func(ctx context.Context, payload interface{}) (interface{}, error) {
		p, err := Payload[CredentialsPayload](CmdSignin, payload)
		if err != nil {
			return nil, err
		}
		got = p
		return nil, nil
	})
	d.RegisterQuery(QryTaskStats, func(ctx context.Context, params interface{}) (interface{}, error) {
		return domain.TaskStats{Total: 2, Completed: 1, Active: 1, CompletionRate: 50}, nil
	})

	_, err := d.ExecuteCommand(context.Background(), CmdSignin, CredentialsPayload{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, "a@b.c", got.Email)

	_, err = d.ExecuteCommand(context.Background(), CmdSignin, &CredentialsPayload{Email: "ptr@b.c"})
	require.NoError(t, err)
	require.Equal(t, "ptr@b.c", got.Email)

	res, err := d.ExecuteQuery(context.Background(), QryTaskStats, nil)
	require.NoError(t, err)
	require.Equal(t, 50, res.(domain.TaskStats).CompletionRate)

	require.Equal(t, []string{CmdSignin}, d.Commands())
	require.Equal(t, []string{QryTaskStats}, d.Queries())
}

func TestDispatcher_UnknownIntent(t *testing.T) {
	d := NewDispatcher()

	_, err := d.ExecuteCommand(context.Background(), "task.archive", nil)
	require.EqualError(t, err, "command handler task.archive not registered")

	_, err = d.ExecuteQuery(context.Background(), "task.archived", nil)
	require.EqualError(t, err, "query handler task.archived not registered")
}

func TestPayload_Mismatch(t *testing.T) {
	_, err := Payload[UpdateTaskPayload](CmdUpdateTask, "t1")
	require.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	var nilPtr *UpdateTaskPayload
	_, err = Payload[UpdateTaskPayload](CmdUpdateTask, nilPtr)
	require.Error(t, err)

	id, err := Payload[string](CmdDeleteTask, "t1")
	require.NoError(t, err)
	require.Equal(t, "t1", id)
}
