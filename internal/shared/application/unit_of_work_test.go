package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ctxKey string

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestWithUnitOfWork(t *testing.T) {
	ctx := context.Background()
	txCtx := context.WithValue(ctx, ctxKey("tx"), "transaction")

	t.Run("commits on success", func(t *testing.T) {
		uow := new(mockUnitOfWork)
		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)

		executed := false
		err := WithUnitOfWork(ctx, uow, func(ctx context.Context) error {
			executed = true
			assert.Equal(t, txCtx, ctx)
			return nil
		})

		require.NoError(t, err)
		assert.True(t, executed)
		uow.AssertExpectations(t)
	})

	t.Run("rolls back and returns the function error", func(t *testing.T) {
		uow := new(mockUnitOfWork)
		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)

		fnErr := errors.New("function error")
		err := WithUnitOfWork(ctx, uow, func(ctx context.Context) error { return fnErr })

		require.ErrorIs(t, err, fnErr)
		uow.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("joins rollback failure with the function error", func(t *testing.T) {
		uow := new(mockUnitOfWork)
		uow.On("Begin", ctx).Return(txCtx, nil)
		rbErr := errors.New("rollback error")
		uow.On("Rollback", txCtx).Return(rbErr)

		fnErr := errors.New("function error")
		err := WithUnitOfWork(ctx, uow, func(ctx context.Context) error { return fnErr })

		require.ErrorIs(t, err, fnErr)
		require.ErrorIs(t, err, rbErr)
	})

	t.Run("does not run the function when begin fails", func(t *testing.T) {
		uow := new(mockUnitOfWork)
		beginErr := errors.New("begin error")
		uow.On("Begin", ctx).Return(ctx, beginErr)

		executed := false
		err := WithUnitOfWork(ctx, uow, func(ctx context.Context) error {
			executed = true
			return nil
		})

		require.ErrorIs(t, err, beginErr)
		assert.False(t, executed)
	})

	t.Run("rolls back when the function panics", func(t *testing.T) {
		uow := new(mockUnitOfWork)
		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)

		assert.Panics(t, func() {
			_ = WithUnitOfWork(ctx, uow, func(ctx context.Context) error { panic("boom") })
		})
		uow.AssertCalled(t, "Rollback", txCtx)
	})

	t.Run("wraps commit error", func(t *testing.T) {
		uow := new(mockUnitOfWork)
		commitErr := errors.New("commit error")
		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(commitErr)

		err := WithUnitOfWork(ctx, uow, func(ctx context.Context) error { return nil })

		require.ErrorIs(t, err, commitErr)
	})
}
