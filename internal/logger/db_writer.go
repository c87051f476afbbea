package logger

import (
	"context"
	"fmt"
	"time"

	"go-opshub/internal/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from the zap core to the worker.
type LogEntry struct {
	Level   zapcore.Level
	Message string
	UserID  string
	Module  string
	Caller  string
}

type logRecord struct {
	Message   string    `bson:"message"`
	UserID    string    `bson:"user_id,omitempty"`
	Module    string    `bson:"module,omitempty"`
	Caller    string    `bson:"caller,omitempty"`
	Level     string    `bson:"level"`
	CreatedAt time.Time `bson:"created_at"`
}

// DBLogWriter ships log entries to the logs collection asynchronously so
// request handling never blocks on logging.
type DBLogWriter struct {
	db      *mongo.Database
	logChan chan LogEntry
}

func NewDBLogWriter(mongodb *database.MongodbDB) *DBLogWriter {
	writer := &DBLogWriter{
		db:      mongodb.DB,
		logChan: make(chan LogEntry, 1000),
	}

	go writer.processLogs()

	return writer
}

// AddLog is called by the zap core hook. A full channel drops the entry
// rather than blocking the request path.
func (w *DBLogWriter) AddLog(entry LogEntry) {
	select {
	case w.logChan <- entry:
	default:
		fmt.Println("DB log channel full, dropping:", entry.Message)
	}
}

func (w *DBLogWriter) processLogs() {
	for entry := range w.logChan {
		record := logRecord{
			Message:   entry.Message,
			UserID:    entry.UserID,
			Module:    entry.Module,
			Caller:    entry.Caller,
			Level:     entry.Level.String(),
			CreatedAt: time.Now().UTC(),
		}

		// Insert errors are swallowed; losing a log line must not take
		// the app down with it.
		w.db.Collection("logs").InsertOne(context.Background(), record)
	}
}
