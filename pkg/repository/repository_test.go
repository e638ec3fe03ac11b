package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"community-recycle-tracker/pkg/db/option"
	"community-recycle-tracker/pkg/errutil"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex"`
	Weight    float64
	CreatedAt time.Time
}

func newDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&widget{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	repo := ProvideStore[widget](newDB(t))
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, &widget{ID: "1", Name: "a", Weight: 3, CreatedAt: now}))
	require.NoError(t, repo.Create(ctx, &widget{ID: "2", Name: "b", Weight: 1, CreatedAt: now.Add(time.Second)}))

	got, err := repo.FindOne(ctx, &widget{Name: "b"})
	require.NoError(t, err)
	require.Equal(t, "2", got.ID)

	missing, err := repo.FindOne(ctx, &widget{Name: "zzz"})
	require.NoError(t, err)
	require.Nil(t, missing)

	list, err := repo.Find(ctx, &widget{}, option.WithSortBy(option.QuerySortBy{SortBy: "weight", OrderBy: "asc"}))
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "2", list[0].ID)

	heavy, err := repo.Count(ctx, &widget{}, option.ApplyOperator(option.Condition{Field: "weight", Operator: option.GT, Value: 2}))
	require.NoError(t, err)
	require.Equal(t, int64(1), heavy)

	require.NoError(t, repo.Update(ctx, "1", map[string]any{"weight": 10}))
	got, err = repo.FindOne(ctx, &widget{ID: "1"})
	require.NoError(t, err)
	require.Equal(t, float64(10), got.Weight)
}

func TestStoreUpdateWhereCompareAndSet(t *testing.T) {
	ctx := context.Background()
	repo := ProvideStore[widget](newDB(t))
	require.NoError(t, repo.Create(ctx, &widget{ID: "1", Name: "a", Weight: 40}))

	cas := func(delta float64) int64 {
		n, err := repo.UpdateWhere(ctx,
			map[string]any{"weight": gorm.Expr("weight + ?", delta)},
			option.ApplyOperator(option.Condition{Field: "id", Operator: option.EQ, Value: "1"}),
			func(db *gorm.DB) *gorm.DB { return db.Where("weight + ? <= ?", delta, 100) },
		)
		require.NoError(t, err)
		return n
	}

	require.Equal(t, int64(1), cas(40))
	require.Equal(t, int64(0), cas(70))
}

func TestStoreDuplicateKeyTranslated(t *testing.T) {
	ctx := context.Background()
	repo := ProvideStore[widget](newDB(t))

	require.NoError(t, repo.Create(ctx, &widget{ID: "1", Name: "a"}))
	err := repo.Create(ctx, &widget{ID: "2", Name: "a"})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestStoreTimeoutIsUnavailable(t *testing.T) {
	repo := ProvideStore[widget](newDB(t), WithTimeout(time.Nanosecond))
	time.Sleep(time.Millisecond)

	_, err := repo.Find(context.Background(), &widget{})
	require.Error(t, err)
	require.ErrorIs(t, err, errutil.ErrStoreUnavailable)
}

func TestClassify(t *testing.T) {
	require.NoError(t, Classify(nil))
	require.ErrorIs(t, Classify(driver.ErrBadConn), errutil.ErrStoreUnavailable)
	require.ErrorIs(t, Classify(fmt.Errorf("wrap: %w", context.DeadlineExceeded)), errutil.ErrStoreUnavailable)

	plain := errors.New("constraint")
	require.Equal(t, plain, Classify(plain))
}

func TestTransactionTimesOutWaitingForConnection(t *testing.T) {
	db := newDB(t)

	// Hold the only pooled connection.
	held := db.Begin()
	require.NoError(t, held.Error)
	defer held.Rollback()

	called := false
	start := time.Now()
	err := Transaction(context.Background(), db, 50*time.Millisecond, func(tx *gorm.DB) error {
		called = true
		return nil
	})

	require.ErrorIs(t, err, errutil.ErrStoreUnavailable)
	require.False(t, called)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestTransactionKeepsCallerErrors(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	repo := ProvideStore[widget](db)

	err := Transaction(ctx, db, 0, func(tx *gorm.DB) error {
		if err := repo.WithTrx(tx).Create(ctx, &widget{ID: "1", Name: "a"}); err != nil {
			return err
		}
		return errutil.InvalidTransition("rolled back")
	})
	require.ErrorIs(t, err, errutil.ErrInvalidTransition)

	got, err := repo.FindOne(ctx, &widget{ID: "1"})
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, Transaction(ctx, db, time.Second, func(tx *gorm.DB) error {
		return repo.WithTrx(tx).Create(ctx, &widget{ID: "2", Name: "b"})
	}))
	got, err = repo.FindOne(ctx, &widget{ID: "2"})
	require.NoError(t, err)
	require.NotNil(t, got)
}
