// Package store keeps a history of rendered charts so the HTTP API can
// return a render again by id.
//
// Two implementations exist: [MemoryStore] for the CLI and tests, and
// [MongoStore] for a shared deployment.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperr "github.com/matzehuels/natalchart/pkg/errors"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

// Record describes one render. Artifacts themselves live in the cache under
// ChartHash; the record keeps enough to render them again.
type Record struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	Name      string    `json:"name,omitempty" bson:"name,omitempty"`
	Place     string    `json:"place" bson:"place"`
	Lat       float64   `json:"lat" bson:"lat"`
	Lon       float64   `json:"lon" bson:"lon"`
	UTCOffset float64   `json:"utc_offset" bson:"utc_offset"`
	Time      time.Time `json:"time" bson:"time"`

	Compact   bool     `json:"compact" bson:"compact"`
	Formats   []string `json:"formats" bson:"formats"`
	ChartHash string   `json:"chart_hash" bson:"chart_hash"`
	SunSign   string   `json:"sun_sign,omitempty" bson:"sun_sign,omitempty"`
	Planets   int      `json:"planets" bson:"planets"`
	Aspects   int      `json:"aspects" bson:"aspects"`
	Empty     bool     `json:"empty" bson:"empty"`
}

// Store persists render records.
type Store interface {
	// Save stores rec, assigning ID and CreatedAt when unset.
	Save(ctx context.Context, rec *Record) error
	// Get returns the record with id or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Record, error)
	// List returns the most recent records, newest first.
	List(ctx context.Context, limit int) ([]Record, error)
	Close(ctx context.Context) error
}

// prepare fills the generated fields of rec.
func prepare(rec *Record) error {
	if rec == nil {
		return apperr.New(apperr.ErrCodeInvalidInput, "nil record")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	} else if _, err := uuid.Parse(rec.ID); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "record id %q", rec.ID)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return nil
}

// ValidateID rejects ids that cannot name a record.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.New(apperr.ErrCodeNotFound, "render %q not found", id)
	}
	return nil
}

func notFound(id string) error {
	return apperr.New(apperr.ErrCodeNotFound, "render %q not found", id)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > DefaultListLimit {
		return DefaultListLimit
	}
	return limit
}
