package domain

import "time"

// Metadata is the store-managed part of every catalog entity.
type Metadata struct {
	ID        string    `json:"id" bson:"_id"`
	Version   int       `json:"-" bson:"version"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Meta lets embedding types satisfy Entity.
func (m *Metadata) Meta() *Metadata { return m }

// Entity is implemented by every catalog type the generic engine handles.
type Entity interface {
	Meta() *Metadata
	Title() string
	BusinessKey() string
	SetBusinessKey(string)
}

// Schema describes one catalog kind to the generic engine and its adapters.
type Schema[E Entity] struct {
	// Kind is the singular name used in messages and metrics ("book").
	Kind string
	// Collection is the store collection and file bucket name ("books").
	Collection string
	// TitleField and BusinessKeyField are store field names.
	TitleField       string
	BusinessKeyField string
	// BusinessKeyJSON is the payload field name of the business key.
	BusinessKeyJSON string
	// Mutable lists the store fields replaced by an update.
	Mutable []string
	New     func() E
}
