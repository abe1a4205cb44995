package cache

import (
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func exerciseCache(t *testing.T, c Cache) {
	t.Helper()

	val, err := c.Get("doujindesk-ticket-store")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, c.Set("doujindesk-ticket-store", []byte(`{"ticketTypes":[]}`), 0))

	val, err = c.Get("doujindesk-ticket-store")
	require.NoError(t, err)
	assert.Equal(t, `{"ticketTypes":[]}`, string(val))

	ok, err := c.Has("doujindesk-ticket-store")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Delete("doujindesk-ticket-store"))
	require.NoError(t, c.Delete("doujindesk-ticket-store"))

	ok, err = c.Has("doujindesk-ticket-store")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set("a", []byte("1"), 0))
	require.NoError(t, c.Set("b", []byte("2"), 0))
	require.NoError(t, c.Flush())

	val, err = c.Get("a")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestMemoryCache(t *testing.T) {
	exerciseCache(t, NewMemoryCache(testLogger()))
}

func TestMemoryCache_TTL(t *testing.T) {
	c := NewMemoryCache(testLogger())
	now := time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set("k", []byte("v"), time.Minute))

	now = now.Add(2 * time.Minute)
	val, err := c.Get("k")
	require.NoError(t, err)
	assert.Nil(t, val)

	stats := c.Stats()
	assert.Equal(t, 1, stats["expired_keys"])
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	c := NewMemoryCache(testLogger())
	data := []byte("abc")
	require.NoError(t, c.Set("k", data, 0))
	data[0] = 'x'

	val, _ := c.Get("k")
	assert.Equal(t, "abc", string(val))

	val[1] = 'y'
	again, _ := c.Get("k")
	assert.Equal(t, "abc", string(again))
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir(), testLogger())
	require.NoError(t, err)
	defer c.Stop()

	exerciseCache(t, c)
}

func TestFileCache_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	c, err := NewFileCache(dir, testLogger())
	require.NoError(t, err)
	require.NoError(t, c.Set("financial-store", []byte(`{"transactions":[]}`), 0))
	c.Stop()

	reopened, err := NewFileCache(dir, testLogger())
	require.NoError(t, err)
	defer reopened.Stop()

	val, err := reopened.Get("financial-store")
	require.NoError(t, err)
	assert.Equal(t, `{"transactions":[]}`, string(val))
	assert.Equal(t, 1, reopened.Stats()["file_count"])
}

func TestRedisCache(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db, testLogger(), "doujindesk:")

	mock.ExpectGet("doujindesk:doujindesk-staff-store").RedisNil()
	val, err := c.Get("doujindesk-staff-store")
	require.NoError(t, err)
	assert.Nil(t, val)

	mock.ExpectSet("doujindesk:doujindesk-staff-store", []byte(`{"staff":[]}`), 0).SetVal("OK")
	require.NoError(t, c.Set("doujindesk-staff-store", []byte(`{"staff":[]}`), 0))

	mock.ExpectGet("doujindesk:doujindesk-staff-store").SetVal(`{"staff":[]}`)
	val, err = c.Get("doujindesk-staff-store")
	require.NoError(t, err)
	assert.Equal(t, `{"staff":[]}`, string(val))

	mock.ExpectExists("doujindesk:doujindesk-staff-store").SetVal(1)
	ok, err := c.Has("doujindesk-staff-store")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectDel("doujindesk:doujindesk-staff-store").SetVal(1)
	require.NoError(t, c.Delete("doujindesk-staff-store"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_Errors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db, testLogger(), "")

	mock.ExpectGet("financial-store").SetErr(errors.New("connection refused"))
	_, err := c.Get("financial-store")
	assert.Error(t, err)

	mock.ExpectFlushDB().SetVal("OK")
	require.NoError(t, c.Flush())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNew(t *testing.T) {
	c, err := New(Options{Driver: DriverMemory}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)

	_, err = New(Options{Driver: DriverRedis}, testLogger())
	assert.Error(t, err)

	_, err = New(Options{Driver: "etcd"}, testLogger())
	assert.Error(t, err)
}
