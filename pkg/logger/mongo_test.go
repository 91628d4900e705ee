package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeCollection struct {
	mu      sync.Mutex
	batches [][]interface{}
	fail    error
}

func (f *fakeCollection) InsertMany(_ context.Context, docs []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.batches = append(f.batches, append([]interface{}(nil), docs...))
	return &mongo.InsertManyResult{}, nil
}

func (f *fakeCollection) docs() []LogDocument {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []LogDocument
	for _, b := range f.batches {
		for _, d := range b {
			out = append(out, d.(LogDocument))
		}
	}
	return out
}

func TestMongoHandler_PromotesIDs(t *testing.T) {
	col := &fakeCollection{}
	h := &MongoHandler{ship: newShipper(col), level: slog.LevelInfo}
	log := slog.New(h).With("request_id", "req-1")

	log.Info("order claimed", "order_id", "ord-1", "rider_id", "rider-9", "version", 3)
	log.WithGroup("http").Info("served", "status", 200, "order_id", "nested")
	log.Debug("dropped by level")
	h.Close()

	docs := col.docs()
	require.Len(t, docs, 2)

	assert.Equal(t, "order claimed", docs[0].Msg)
	assert.Equal(t, "INFO", docs[0].Level)
	assert.Equal(t, "req-1", docs[0].RequestID)
	assert.Equal(t, "ord-1", docs[0].OrderID)
	assert.Equal(t, "rider-9", docs[0].RiderID)
	assert.EqualValues(t, 3, docs[0].Attrs["version"])

	assert.Empty(t, docs[1].OrderID)
	assert.Equal(t, "nested", docs[1].Attrs["http.order_id"])
	assert.EqualValues(t, 200, docs[1].Attrs["http.status"])
}

func TestShipper_BatchesAndFlushesOnStop(t *testing.T) {
	col := &fakeCollection{}
	s := newShipper(col)
	for i := 0; i < mongoBatchSize+5; i++ {
		s.enqueue(LogDocument{Time: time.Now(), Msg: "ping"})
	}
	s.stop()
	s.stop()

	assert.Len(t, col.docs(), mongoBatchSize+5)
	col.mu.Lock()
	defer col.mu.Unlock()
	for _, b := range col.batches {
		assert.LessOrEqual(t, len(b), mongoBatchSize)
	}
}

func TestShipper_ReportsInsertFailuresOnce(t *testing.T) {
	col := &fakeCollection{fail: errors.New("no primary")}
	var out bytes.Buffer
	s := &shipper{col: col, errOut: &out}

	s.report(3, col.fail)
	s.report(5, col.fail)
	assert.Equal(t, "logger: mongo sink: insert of 3 records failed: no primary\n", out.String())

	out.Reset()
	s.report(2, nil)
	assert.Equal(t, "logger: mongo sink: inserts recovered\n", out.String())
}

func TestShipper_FailedFlushIsReported(t *testing.T) {
	col := &fakeCollection{fail: errors.New("auth failed")}
	var out bytes.Buffer
	prev := sinkErrors
	sinkErrors = &out
	t.Cleanup(func() { sinkErrors = prev })
	s := newShipper(col)
	s.enqueue(LogDocument{Time: time.Now(), Msg: "order created"})
	s.stop()

	assert.Contains(t, out.String(), "insert of 1 records failed: auth failed")
	assert.Empty(t, col.docs())
}
