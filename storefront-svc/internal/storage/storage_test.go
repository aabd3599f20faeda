package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-storefront/storefront-svc/internal/domain"
	"delivery-storefront/storefront-svc/internal/storage"
)

const sampleDocument = `{
	"restaurants": [{"id": 1, "name": "Chez Paul", "cuisineType": "French", "averageRating": 4.2,
		"dishes": [{"id": 10, "name": "Soupe", "price": 7.5, "allergens": []}]}],
	"users": [{"id": 1, "email": "john.doe@test.com", "password": "password123", "role": "user"}],
	"commands": []
}`

func TestRedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := storage.NewRedisStorage(client, time.Hour)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "session:a:cart")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "session:a:cart", "[]"))
	require.NoError(t, store.Set(ctx, "session:a:auth-user", "{}"))
	assert.Equal(t, time.Hour, mr.TTL("session:a:cart"))

	value, ok, err := store.Get(ctx, "session:a:cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", value)

	require.NoError(t, store.Remove(ctx, "session:a:cart", "session:a:auth-user"))
	assert.False(t, mr.Exists("session:a:cart"))
	assert.False(t, mr.Exists("session:a:auth-user"))
	assert.NoError(t, store.Remove(ctx))
}

func TestRedisStorage_ConnectionError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := storage.NewRedisStorage(client, time.Hour)
	mr.Close()

	_, _, err := store.Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestMemoryStorage(t *testing.T) {
	store := storage.NewMemoryStorage()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v"))
	value, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)

	require.NoError(t, store.Remove(ctx, "k", "missing"))
	_, ok, _ = store.Get(ctx, "k")
	assert.False(t, ok)
}

func TestHTTPSource_Fetch(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{name: "valid document", status: http.StatusOK, body: sampleDocument},
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantErr: true},
		{name: "malformed json", status: http.StatusOK, body: "{not json", wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(testCase.status)
				_, _ = w.Write([]byte(testCase.body))
			}))
			defer srv.Close()

			ds, err := storage.NewHTTPSource(srv.URL, time.Second).Fetch(context.Background())
			if testCase.wantErr {
				assert.Error(t, err)
				assert.Nil(t, ds)
				return
			}
			require.NoError(t, err)
			require.Len(t, ds.Restaurants, 1)
			assert.Equal(t, "Chez Paul", ds.Restaurants[0].Name)
			assert.Len(t, ds.Users, 1)
		})
	}
}

func TestHTTPSource_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := storage.NewHTTPSource(url, time.Second).Fetch(context.Background())
	assert.Error(t, err)
}

func TestPostgresSource_Fetch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT document FROM datasets WHERE name").
		WithArgs("storefront").
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow([]byte(sampleDocument)))

	ds, err := storage.NewPostgresSource(db, "storefront").Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Restaurants, 1)
	assert.Equal(t, 10, ds.Restaurants[0].Dishes[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_FetchMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT document FROM datasets WHERE name").
		WithArgs("storefront").
		WillReturnRows(sqlmock.NewRows([]string{"document"}))

	_, err = storage.NewPostgresSource(db, "storefront").Fetch(context.Background())
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_SchemaAndPut(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS datasets").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO datasets").
		WithArgs("storefront", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	src := storage.NewPostgresSource(db, "storefront")
	require.NoError(t, src.EnsureSchema(context.Background()))
	require.NoError(t, src.Put(context.Background(), storage.DefaultDocument()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

type recordingWriter struct {
	messages []kafka.Message
	err      error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return w.err
}

func TestKafkaPublisher_PublishOrderEvent(t *testing.T) {
	writer := &recordingWriter{}
	publisher := storage.NewKafkaPublisher(writer)

	event := domain.OrderEvent{
		Type:         domain.EventOrderCreated,
		OrderID:      42,
		UserID:       1,
		RestaurantID: 3,
		Status:       domain.StatusPending,
		TotalPrice:   37.5,
	}
	require.NoError(t, publisher.PublishOrderEvent(context.Background(), event))

	require.Len(t, writer.messages, 1)
	assert.Equal(t, "42", string(writer.messages[0].Key))

	var decoded domain.OrderEvent
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &decoded))
	assert.Equal(t, event.Type, decoded.Type)
	assert.Equal(t, 37.5, decoded.TotalPrice)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	writer := &recordingWriter{err: errors.New("broker down")}
	err := storage.NewKafkaPublisher(writer).PublishOrderEvent(context.Background(), domain.OrderEvent{OrderID: 1})
	assert.EqualError(t, err, "broker down")
}

func TestLoadDocument(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "data.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(good, []byte(sampleDocument), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))

	ds, raw, err := storage.LoadDocument(good)
	require.NoError(t, err)
	assert.Len(t, ds.Restaurants, 1)
	assert.Equal(t, sampleDocument, string(raw))

	_, _, err = storage.LoadDocument(bad)
	assert.Error(t, err)

	_, _, err = storage.LoadDocument(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultDocument(t *testing.T) {
	ds := storage.DefaultDocument()
	require.Len(t, ds.Restaurants, 1)
	assert.Equal(t, "Restaurant Test", ds.Restaurants[0].Name)
	assert.Empty(t, ds.Users)
	assert.Empty(t, ds.Commands)
}
