package sqlsession

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	Name  string
	ID    int64
	Image string `db:"image_url"`
}

func TestSession_SelectSliceOfScalars(t *testing.T) {
	s, mock := newMockSession(t, "mysql")

	mock.ExpectPrepare("select id from users").ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2)))

	ids := make([]int, 0)

	require.NoError(t, s.Select(context.Background(), &ids, "select id from users"))
	assert.Equal(t, []int{1, 2}, ids)

	closeMockSession(t, s, mock)
}

func TestSession_SelectStruct(t *testing.T) {
	s, mock := newMockSession(t, "mysql")

	mock.ExpectPrepare("select * from users where id=?").ExpectQuery().WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "id", "image_url", "created_at"}).
			AddRow("kite", int64(1), "kite.png", "2024-01-01"))

	u := user{}

	require.NoError(t, s.Select(context.Background(), &u, "select * from users where id=?", 1))
	assert.Equal(t, user{Name: "kite", ID: 1, Image: "kite.png"}, u)

	closeMockSession(t, s, mock)
}

func TestSession_SelectSliceOfStructs(t *testing.T) {
	s, mock := newMockSession(t, "mysql")

	mock.ExpectPrepare("select * from users").ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "a").
			AddRow(int64(2), "b"))

	var users []user

	require.NoError(t, s.Select(context.Background(), &users, "select * from users"))
	assert.Equal(t, []user{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}, users)

	closeMockSession(t, s, mock)
}

func TestSession_SelectNoRows(t *testing.T) {
	s, mock := newMockSession(t, "mysql")

	mock.ExpectPrepare("select * from users where id=?").ExpectQuery().WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	u := user{}
	err := s.Select(context.Background(), &u, "select * from users where id=?", 9)

	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.ErrorIs(t, err, ErrExecution)

	closeMockSession(t, s, mock)
}

func TestSession_SelectScanErrors(t *testing.T) {
	s, mock := newMockSession(t, "mysql")

	mock.ExpectPrepare("select id from users").ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("not a number"))
	mock.ExpectPrepare("select id from users where id=?").ExpectQuery().WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("not a number"))

	var ids []int

	err := s.Select(context.Background(), &ids, "select id from users")

	assert.ErrorIs(t, err, ErrExecution)
	assert.NotErrorIs(t, err, ErrBind)

	u := user{}

	err = s.Select(context.Background(), &u, "select id from users where id=?", 1)

	assert.ErrorIs(t, err, ErrExecution)
	assert.NotErrorIs(t, err, ErrBind)

	closeMockSession(t, s, mock)
}

func TestSession_SelectInvalidDestination(t *testing.T) {
	s, mock := newMockSession(t, "mysql")
	ctx := context.Background()

	var (
		u user
		n int
	)

	tests := []struct {
		desc    string
		data    any
		wantErr error
	}{
		{"not a pointer", u, errSelectDataNotPointer},
		{"nil", nil, errSelectDataNotPointer},
		{"pointer to scalar", &n, errSelectUnsupported},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			err := s.Select(ctx, tc.data, "select * from users")

			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, ErrBind)
		})
	}

	closeMockSession(t, s, mock)
}

func TestSession_SelectQueryError(t *testing.T) {
	s, mock := newMockSession(t, "mysql")

	var ids []int

	err := s.Select(context.Background(), &ids, "select id from users where id = ?")

	assert.ErrorIs(t, err, ErrPreparation)
	assert.Empty(t, ids)

	closeMockSession(t, s, mock)
}

func TestSession_SelectCancelledContext(t *testing.T) {
	s, mock := newMockSession(t, "mysql")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ids []int

	err := s.Select(ctx, &ids, "select id from users")

	assert.ErrorIs(t, err, context.Canceled)

	closeMockSession(t, s, mock)
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ID", "id"},
		{"Name", "name"},
		{"UserID", "user_id"},
		{"CreatedAt", "created_at"},
		{"HTTPStatus", "http_status"},
	}

	for i, tc := range tests {
		assert.Equal(t, tc.want, ToSnakeCase(tc.input), "TEST[%d] failed", i)
	}
}
