package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoQueueSize = 4096
	mongoBatchSize = 50
	mongoFlushTick = 2 * time.Second
)

// LogDocument is one log line as stored in MongoDB. The ids support
// cross-cutting lookups such as "every line about order X".
type LogDocument struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Source    string    `bson:"source,omitempty"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	OrderID   string    `bson:"order_id,omitempty"`
	UserID    string    `bson:"user_id,omitempty"`
	RiderID   string    `bson:"rider_id,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// promote sets the document field for a top-level id attribute and
// reports whether key was one.
func (d *LogDocument) promote(key, val string) bool {
	switch key {
	case "request_id":
		d.RequestID = val
	case "order_id":
		d.OrderID = val
	case "user_id":
		d.UserID = val
	case "rider_id":
		d.RiderID = val
	default:
		return false
	}
	return true
}

// sinkErrors receives sink failures. The sink cannot log through slog
// without feeding its own queue.
var sinkErrors io.Writer = os.Stderr

// inserter is the part of *mongo.Collection the shipper needs.
type inserter interface {
	InsertMany(ctx context.Context, docs []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// shipper batches documents into InsertMany calls from one goroutine.
// Enqueue never blocks; documents are dropped while the queue is full.
type shipper struct {
	col     inserter
	errOut  io.Writer
	failing bool
	queue   chan LogDocument
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func newShipper(col inserter) *shipper {
	s := &shipper{
		col:     col,
		errOut:  sinkErrors,
		queue:   make(chan LogDocument, mongoQueueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *shipper) enqueue(doc LogDocument) {
	select {
	case s.queue <- doc:
	default:
	}
}

func (s *shipper) loop() {
	defer close(s.stopped)
	ticker := time.NewTicker(mongoFlushTick)
	defer ticker.Stop()

	batch := make([]interface{}, 0, mongoBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := s.col.InsertMany(ctx, batch, options.InsertMany().SetOrdered(false))
		s.report(len(batch), err)
		batch = batch[:0]
	}

	for {
		select {
		case doc := <-s.queue:
			if batch = append(batch, doc); len(batch) >= mongoBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			for {
				select {
				case doc := <-s.queue:
					if batch = append(batch, doc); len(batch) >= mongoBatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// report writes the first failure of a run of failed inserts, and the
// recovery that ends it.
func (s *shipper) report(n int, err error) {
	switch {
	case err != nil && !s.failing:
		s.failing = true
		fmt.Fprintf(s.errOut, "logger: mongo sink: insert of %d records failed: %v\n", n, err)
	case err == nil && s.failing:
		s.failing = false
		fmt.Fprintln(s.errOut, "logger: mongo sink: inserts recovered")
	}
}

// stop flushes what is queued and waits for the last insert.
func (s *shipper) stop() {
	s.once.Do(func() { close(s.done) })
	<-s.stopped
}

// MongoHandler is a slog.Handler that ships records to MongoDB in batches.
type MongoHandler struct {
	ship   *shipper
	client *mongo.Client
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// NewMongoHandler connects to uri and writes into db.collection, keeping
// documents for ttl (no expiry when ttl is zero). Call Close to flush.
func NewMongoHandler(uri, db, collection string, ttl time.Duration) (*MongoHandler, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(10))
	if err != nil {
		return nil, fmt.Errorf("logger: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("logger: mongo ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	timeIdx := options.Index()
	if ttl > 0 {
		timeIdx.SetExpireAfterSeconds(int32(ttl / time.Second))
	}
	// Missing indexes slow lookups and skip expiry but do not stop shipping.
	if _, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "time", Value: 1}}, Options: timeIdx},
		{Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "time", Value: 1}}},
		{Keys: bson.D{{Key: "request_id", Value: 1}}},
	}); err != nil {
		fmt.Fprintf(sinkErrors, "logger: mongo sink: create indexes on %s.%s: %v\n", db, collection, err)
	}

	return &MongoHandler{ship: newShipper(col), client: client, level: slog.LevelInfo}, nil
}

func (h *MongoHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *MongoHandler) Handle(_ context.Context, r slog.Record) error {
	h.ship.enqueue(h.document(r))
	return nil
}

// document flattens r. Grouped attributes are keyed "group.key"; the ids
// are only promoted outside groups.
func (h *MongoHandler) document(r slog.Record) LogDocument {
	doc := LogDocument{Time: r.Time, Level: r.Level.String(), Msg: r.Message, Attrs: bson.M{}}
	if r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		doc.Source = fmt.Sprintf("%s:%d", frame.File, frame.Line)
	}

	prefix := strings.Join(h.groups, ".")
	add := func(a slog.Attr) bool {
		v := a.Value.Resolve()
		if prefix == "" && v.Kind() == slog.KindString && doc.promote(a.Key, v.String()) {
			return true
		}
		key := a.Key
		if prefix != "" {
			key = prefix + "." + key
		}
		doc.Attrs[key] = v.Any()
		return true
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(add)
	if len(doc.Attrs) == 0 {
		doc.Attrs = nil
	}
	return doc
}

func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// Close flushes queued records and disconnects. Safe to call twice.
func (h *MongoHandler) Close() {
	h.ship.stop()
	if h.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = h.client.Disconnect(ctx)
}
