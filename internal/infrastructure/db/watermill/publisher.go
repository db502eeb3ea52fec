package watermilldb

import (
	"database/sql"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	wsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	log "github.com/sirupsen/logrus"
)

// NewInMemoryPublisher returns a publisher that only lives in the process.
func NewInMemoryPublisher() message.Publisher {
	return gochannel.NewGoChannel(gochannel.Config{}, newLogger())
}

// NewPostgresPublisher stores the messages of every topic in the watermill_<topic> table
// of db, creating it on first use.
func NewPostgresPublisher(db *sql.DB) (message.Publisher, error) {
	publisher, err := wsql.NewPublisher(
		db,
		wsql.PublisherConfig{
			SchemaAdapter:        wsql.DefaultPostgreSQLSchema{},
			AutoInitializeSchema: true,
		},
		newLogger(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres publisher: %s", err)
	}
	return publisher, nil
}

func newLogger() watermill.LoggerAdapter {
	debug := log.IsLevelEnabled(log.DebugLevel)
	trace := log.IsLevelEnabled(log.TraceLevel)
	return watermill.NewStdLogger(debug, trace)
}
