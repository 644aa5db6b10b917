package db

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"quietseed/internal/model"
)

func TestOpen_SQLiteMigrates(t *testing.T) {
	gormDB, err := Open(Options{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)

	for _, m := range Models {
		assert.True(t, gormDB.Migrator().HasTable(m))
	}
}

func TestOpen_ResetDropsRows(t *testing.T) {
	gormDB, err := Open(Options{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, gormDB.Create(&model.Category{Name: "Story", Slug: "story"}).Error)

	require.NoError(t, Reset(gormDB))
	assert.False(t, gormDB.Migrator().HasTable(&model.Category{}))

	require.NoError(t, Migrate(gormDB))
	var count int64
	require.NoError(t, gormDB.Model(&model.Category{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOpen_UnknownDriver(t *testing.T) {
	tests := []string{"", "postgres", "memory"}
	for _, driver := range tests {
		t.Run(driver, func(t *testing.T) {
			_, err := Open(Options{Driver: driver})
			assert.ErrorIs(t, err, ErrUnknownDriver)
		})
	}
}

func TestLogger_SkipsRecordNotFound(t *testing.T) {
	var out bytes.Buffer
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: newLogger(&out)})
	require.NoError(t, err)
	require.NoError(t, Migrate(gormDB))
	out.Reset()

	var user model.User
	err = gormDB.Where("username = ?", "nobody").First(&user).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, out.String())

	err = gormDB.Exec("SELECT * FROM no_such_table").Error
	require.Error(t, err)
	assert.Contains(t, out.String(), "no_such_table")
}
